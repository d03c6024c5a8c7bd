package gateway

import (
	"errors"

	"klondike/internal/board"
)

var ErrUnknownAction = errors.New("unknown_action")

type Action string

const (
	ActionNew          Action = "new"
	ActionDraw         Action = "draw"
	ActionAutoComplete Action = "autocomplete"
	ActionUndo         Action = "undo"
	ActionRedo         Action = "redo"
	ActionHint         Action = "hint"
	ActionClick        Action = "click"
)

// Dispatch runs a named board action. cardID is only read by click.
func Dispatch(b *board.Board, action Action, cardID string) (bool, error) {
	switch action {
	case ActionNew:
		b.NewGame()
		return true, nil
	case ActionDraw:
		return b.Draw(), nil
	case ActionAutoComplete:
		return b.AutoComplete(), nil
	case ActionUndo:
		return b.Undo(), nil
	case ActionRedo:
		return b.Redo(), nil
	case ActionHint:
		return b.Hint(), nil
	case ActionClick:
		return b.Click(cardID), nil
	default:
		return false, ErrUnknownAction
	}
}
