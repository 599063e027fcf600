package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Steward is a curated delegation target
type Steward struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Address        string  `json:"address" yaml:"address"`
	Bio            string  `json:"bio" yaml:"bio"`
	Avatar         string  `json:"avatar" yaml:"avatar"`
	VotingPower    float64 `json:"votingPower" yaml:"votingPower"`
	ProposalsVoted int     `json:"proposalsVoted" yaml:"proposalsVoted"`
}

// Matches reports whether the steward's address equals addr
func (s Steward) Matches(addr common.Address) bool {
	return EqualAddressFold(s.Address, addr.Hex())
}

// FindSteward returns the steward whose address equals addr
func FindSteward(stewards []Steward, addr common.Address) (*Steward, bool) {
	for i := range stewards {
		if stewards[i].Matches(addr) {
			s := stewards[i]
			return &s, true
		}
	}
	return nil, false
}
