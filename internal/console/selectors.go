package console

import (
	"strings"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// DeviceSelector tracks which of a project's devices an access key is bound
// to. Selection order in Selected follows the device list, not click order.
type DeviceSelector struct {
	devices  []gateway.Device
	selected map[int64]bool
}

// NewDeviceSelector creates a selector over the project's devices with the
// given IDs pre-selected. Unknown IDs are ignored.
func NewDeviceSelector(devices []gateway.Device, selected []int64) *DeviceSelector {
	s := &DeviceSelector{
		devices:  devices,
		selected: make(map[int64]bool, len(selected)),
	}
	known := make(map[int64]bool, len(devices))
	for _, d := range devices {
		known[d.ID] = true
	}
	for _, id := range selected {
		if known[id] {
			s.selected[id] = true
		}
	}
	return s
}

// Devices returns the selectable devices.
func (s *DeviceSelector) Devices() []gateway.Device {
	return s.devices
}

// IsSelected reports whether the device is selected.
func (s *DeviceSelector) IsSelected(id int64) bool {
	return s.selected[id]
}

// Toggle flips one device's selection. Unknown IDs are ignored.
func (s *DeviceSelector) Toggle(id int64) {
	for _, d := range s.devices {
		if d.ID == id {
			if s.selected[id] {
				delete(s.selected, id)
			} else {
				s.selected[id] = true
			}
			return
		}
	}
}

// ToggleAll selects every device, or clears the selection when every device
// is already selected.
func (s *DeviceSelector) ToggleAll() {
	if len(s.selected) == len(s.devices) && len(s.devices) > 0 {
		s.selected = make(map[int64]bool)
		return
	}
	for _, d := range s.devices {
		s.selected[d.ID] = true
	}
}

// Selected returns the selected device IDs in device list order.
func (s *DeviceSelector) Selected() []int64 {
	ids := make([]int64, 0, len(s.selected))
	for _, d := range s.devices {
		if s.selected[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// DomainListEditor manages the editable list of domain slots. The list always
// holds at least one slot, and a new slot cannot be added while the last one
// is still blank.
type DomainListEditor struct {
	slots []string
}

// NewDomainListEditor creates an editor seeded with the given values. With no
// values it starts with a single blank slot.
func NewDomainListEditor(values []string) *DomainListEditor {
	slots := make([]string, 0, len(values))
	slots = append(slots, values...)
	if len(slots) == 0 {
		slots = append(slots, "")
	}
	return &DomainListEditor{slots: slots}
}

// Slots returns a copy of the current slots, blanks included.
func (e *DomainListEditor) Slots() []string {
	slots := make([]string, len(e.slots))
	copy(slots, e.slots)
	return slots
}

// Set replaces the value of slot i. Out-of-range indexes are ignored.
func (e *DomainListEditor) Set(i int, value string) {
	if i < 0 || i >= len(e.slots) {
		return
	}
	e.slots[i] = value
}

// Add appends a blank slot. It refuses while the last slot is still blank, so
// the list never accumulates empty rows.
func (e *DomainListEditor) Add() error {
	if strings.TrimSpace(e.slots[len(e.slots)-1]) == "" {
		return validationErr("Fill in the current domain name before adding another")
	}
	e.slots = append(e.slots, "")
	return nil
}

// Remove deletes slot i. The last remaining slot is blanked instead of
// removed. Out-of-range indexes are ignored.
func (e *DomainListEditor) Remove(i int) {
	if i < 0 || i >= len(e.slots) {
		return
	}
	if len(e.slots) == 1 {
		e.slots[0] = ""
		return
	}
	e.slots = append(e.slots[:i], e.slots[i+1:]...)
}

// Values returns the trimmed, non-blank slot values in order.
func (e *DomainListEditor) Values() []string {
	values := make([]string, 0, len(e.slots))
	for _, slot := range e.slots {
		trimmed := strings.TrimSpace(slot)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
