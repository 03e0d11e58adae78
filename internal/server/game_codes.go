package server

import (
	"errors"
	"math/rand"
	"strings"
)

func GenerateGameCode(usedCodes map[string]bool) string {
	for {
		code := make([]byte, 4)
		for i := range code {
			code[i] = 'A' + byte(rand.Intn(26))
		}
		gameCode := string(code)

		if !usedCodes[gameCode] {
			return gameCode
		}
	}
}

func ValidateGameCode(code string) error {
	if len(code) != 4 {
		return errors.New("Game code must be exactly 4 characters")
	}

	code = strings.ToUpper(code)
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return errors.New("Game code must contain only letters A-Z")
		}
	}

	return nil
}

func NormalizeGameCode(code string) string {
	return strings.ToUpper(code)
}
