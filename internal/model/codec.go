package model

import (
	"encoding/json"
	"fmt"
)

// ItemList is the ordered top-level sequence of a workout. It carries the
// custom JSON decoding for the step/group union: elements are told apart by
// their step_type tag, with StepRepeat marking a group.
type ItemList []WorkoutItem

// Clone returns a deep copy of the list.
func (l ItemList) Clone() ItemList {
	if l == nil {
		return nil
	}
	c := make(ItemList, len(l))
	for i, item := range l {
		c[i] = item.CloneItem()
	}
	return c
}

// MarshalJSON encodes each element as its concrete variant. A nil list
// encodes as [] so the wire shape always carries a steps array.
func (l ItemList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]WorkoutItem(l))
}

// UnmarshalJSON decodes the union by peeking at each element's step_type.
func (l *ItemList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	items := make(ItemList, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			StepType StepType `json:"step_type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("step %d: reading step_type: %w", i, err)
		}

		if tag.StepType == StepRepeat {
			var g RepeatGroup
			if err := json.Unmarshal(raw, &g); err != nil {
				return fmt.Errorf("step %d: decoding repeat group: %w", i, err)
			}
			items = append(items, g)
			continue
		}

		var s WorkoutStep
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("step %d: decoding step: %w", i, err)
		}
		items = append(items, s)
	}

	*l = items
	return nil
}
