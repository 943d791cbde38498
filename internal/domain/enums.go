package domain

import (
	"fmt"
	"strings"
)

type CommitmentKind string

const (
	KindTask  CommitmentKind = "TASK"
	KindBlock CommitmentKind = "BLOCK"
)

// Strategy names one of the allocation algorithms.
type Strategy string

const (
	StrategyJAT       Strategy = "JAT"
	StrategyPEPS      Strategy = "PEPS"
	StrategyEquilibre Strategy = "EQUILIBRE"
	StrategyManual    Strategy = "MANUAL"
)

// ValidStrategies is the canonical set of accepted strategy names.
var ValidStrategies = []Strategy{StrategyJAT, StrategyPEPS, StrategyEquilibre, StrategyManual}

// ParseStrategy is case-insensitive and accepts the accented "équilibré".
func ParseStrategy(s string) (Strategy, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("É", "E", "é", "E").Replace(norm)
	for _, v := range ValidStrategies {
		if string(v) == norm {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q (want one of JAT, PEPS, EQUILIBRE, MANUAL)", s)
}
