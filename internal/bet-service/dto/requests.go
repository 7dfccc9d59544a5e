package dto

type SelectionRequest struct {
	AvailableBetID string `json:"available_bet_id" validate:"required"`
}

type PlaceBetRequest struct {
	Selections []SelectionRequest `json:"selections" validate:"required,min=1,dive"`
	StakeCents int64              `json:"stake_cents" validate:"gt=0"`
	BetType    string             `json:"bet_type" validate:"required,oneof=single parlay"`
}
