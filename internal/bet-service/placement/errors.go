package placement

import "errors"

// Rejeições tipadas. Nenhuma delas deixa efeito colateral no banco.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("available bet not found")
	ErrBetInactive         = errors.New("available bet is no longer active")
	ErrGameNotOpen         = errors.New("game is not open for betting")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInternal            = errors.New("internal error")

	// ErrCommitUnknown é devolvido pelo Store quando o COMMIT falha depois do débito
	ErrCommitUnknown = errors.New("commit outcome unknown")
)

// Code traduz o erro para o código exposto na API
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBetInactive):
		return "bet_inactive"
	case errors.Is(err, ErrGameNotOpen):
		return "game_not_open"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return "internal"
	}
}
