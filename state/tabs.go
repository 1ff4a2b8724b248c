package state

import (
	"group-messaging/domain"
	"group-messaging/domain/event"

	"github.com/samber/lo"
)

// OpenTab reuses the tab with this label or appends a new inactive one,
// activating it when asked. tab.opened is always emitted.
func (s *State) OpenTab(label string, makeActive bool) domain.Tab {
	var tab domain.Tab
	s.turn(func() { tab = s.openTab(label, makeActive) })
	return tab
}

// CloseTab removes the tab, deactivating it first when it was active.
func (s *State) CloseTab(label string) {
	s.turn(func() { s.closeTab(label) })
}

// ActivateTab activates the matching tab and deactivates every other one.
// An unmatched or empty label deactivates all tabs.
func (s *State) ActivateTab(label string) {
	s.turn(func() { s.activateTab(label) })
}

func (s *State) DeactivateTab(label string) {
	s.turn(func() {
		if s.deactivateTab(label) {
			s.emit(event.TabsUpdated, nil)
		}
	})
}

// HasActiveTab reports whether exactly one tab is active.
func (s *State) HasActiveTab() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActiveTab()
}

func (s *State) ActiveTab() (domain.Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := s.activeTab()
	if tab == nil {
		return domain.Tab{}, false
	}
	return *tab, true
}

func (s *State) FindTab(label string) (domain.Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := s.findTab(label)
	if tab == nil {
		return domain.Tab{}, false
	}
	return *tab, true
}

// Tabs returns a snapshot of the open tabs in opening order.
func (s *State) Tabs() []domain.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.tabs, func(tab *domain.Tab, _ int) domain.Tab {
		return *tab
	})
}

func (s *State) findTab(label string) *domain.Tab {
	tab, _ := lo.Find(s.tabs, func(t *domain.Tab) bool {
		return t.Label == label
	})
	return tab
}

func (s *State) activeTab() *domain.Tab {
	tab, _ := lo.Find(s.tabs, func(t *domain.Tab) bool {
		return t.IsActive
	})
	return tab
}

func (s *State) hasActiveTab() bool {
	return lo.CountBy(s.tabs, func(t *domain.Tab) bool {
		return t.IsActive
	}) == 1
}

func (s *State) openTab(label string, makeActive bool) domain.Tab {
	tab := s.findTab(label)
	if tab == nil {
		tab = domain.NewTab(label)
		s.tabs = append(s.tabs, tab)
	}
	if makeActive {
		s.activateTab(label)
	}
	s.emit(event.TabOpened, event.TabOpening{Label: label, IsActive: makeActive})
	return *tab
}

// closeTab emits tab.deactivated (if needed), tab.closed, then tabs.updated.
func (s *State) closeTab(label string) {
	_, index, found := lo.FindIndexOf(s.tabs, func(t *domain.Tab) bool {
		return t.Label == label
	})
	if !found {
		s.log.Debug("No tab to close", "label", label)
		return
	}
	if s.tabs[index].IsActive {
		s.deactivateTab(label)
	}
	s.tabs = append(s.tabs[:index], s.tabs[index+1:]...)
	s.emit(event.TabClosed, event.TabChange{Label: label})
	s.emit(event.TabsUpdated, nil)
}

func (s *State) activateTab(label string) {
	matched := false
	for _, tab := range s.tabs {
		tab.IsActive = tab.Label == label
		matched = matched || tab.IsActive
	}
	if matched {
		s.emit(event.TabActivated, event.TabChange{Label: label})
	}
	s.emit(event.TabsUpdated, nil)
}

func (s *State) deactivateTab(label string) bool {
	tab := s.findTab(label)
	if tab == nil {
		return false
	}
	tab.IsActive = false
	s.emit(event.TabDeactivated, event.TabChange{Label: label})
	return true
}
