package debugger

import (
	"fmt"
	"sync"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

// Watchpoint monitors a register or memory cell for a value change between
// single-steps: either one of the eight named registers or a cell in
// machine.Memory's flat, word-addressed store.
type Watchpoint struct {
	ID         int
	IsRegister bool
	Register   machine.Register // meaningful when IsRegister
	Cell       uint64            // meaningful when !IsRegister
	Enabled    bool
	LastValue  uint64
	HitCount   int
}

// WatchpointManager manages the debugger's active watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates an empty watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{watchpoints: make(map[int]*Watchpoint), nextID: 1}
}

// AddRegister starts watching a register.
func (wm *WatchpointManager) AddRegister(reg machine.Register) *Watchpoint {
	return wm.add(&Watchpoint{IsRegister: true, Register: reg})
}

// AddMemory starts watching a memory cell.
func (wm *WatchpointManager) AddMemory(cell uint64) *Watchpoint {
	return wm.add(&Watchpoint{Cell: cell})
}

func (wm *WatchpointManager) add(wp *Watchpoint) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp.ID = wm.nextID
	wp.Enabled = true
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// Delete removes a watchpoint by ID.
func (wm *WatchpointManager) Delete(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// SetEnabled toggles a watchpoint by ID.
func (wm *WatchpointManager) SetEnabled(id int, enabled bool) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = enabled
	return nil
}

// All returns every watchpoint, in no particular order.
func (wm *WatchpointManager) All() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	out := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		out = append(out, wp)
	}
	return out
}

// Clear removes every watchpoint.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of registered watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}

func (wp *Watchpoint) currentValue(vm *machine.VM) uint64 {
	if wp.IsRegister {
		return vm.Registers[wp.Register]
	}
	return vm.Memory.Load(wp.Cell)
}

// Init captures a watchpoint's starting value, so the first Check call
// after registering it does not report a spurious change.
func (wm *WatchpointManager) Init(id int, vm *machine.VM) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.LastValue = wp.currentValue(vm)
	return nil
}

// Check scans every enabled watchpoint against vm's current state and
// returns the first one whose value has changed since the last Check or
// Init, along with its previous and new value.
func (wm *WatchpointManager) Check(vm *machine.VM) (wp *Watchpoint, previous, current uint64, changed bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, w := range wm.watchpoints {
		if !w.Enabled {
			continue
		}
		value := w.currentValue(vm)
		if value != w.LastValue {
			previous = w.LastValue
			w.LastValue = value
			w.HitCount++
			return w, previous, value, true
		}
	}
	return nil, 0, 0, false
}
