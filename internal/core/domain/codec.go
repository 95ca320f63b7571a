package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedPayload = errors.New("malformed habit payload")

func EncodeHabits(habits []Habit) ([]byte, error) {
	if habits == nil {
		habits = []Habit{}
	}
	data, err := json.Marshal(habits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode habits: %w", err)
	}
	return data, nil
}

func DecodeHabits(data []byte) ([]Habit, error) {
	var habits []Habit
	if err := json.Unmarshal(data, &habits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if habits == nil {
		return []Habit{}, nil
	}
	return habits, nil
}
