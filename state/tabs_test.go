package state

import (
	"testing"

	"group-messaging/domain"
	"group-messaging/domain/event"

	"github.com/stretchr/testify/require"
)

func TestOpenTab_Creates_Or_Reuses(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// When opening the same label twice in the background
	first := f.state.OpenTab("bob", false)
	second := f.state.OpenTab("bob", false)

	// Then a single inactive tab exists
	req.Equal(domain.Tab{Label: "bob"}, first)
	req.Equal(first, second)
	req.Equal([]string{"bob"}, labels(f.state.Tabs()))
	req.False(f.state.HasActiveTab())
	req.Equal([]event.Type{event.TabOpened, event.TabOpened}, f.events.types())
}

func TestOpenTab_Active_Deactivates_Others(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", true)
	f.events.reset()

	tab := f.state.OpenTab("carol", true)

	req.True(tab.IsActive)
	req.Equal([]string{"carol"}, activeLabels(f.state.Tabs()))
	active, ok := f.state.ActiveTab()
	req.True(ok)
	req.Equal("carol", active.Label)
	req.Equal([]event.Type{event.TabActivated, event.TabsUpdated, event.TabOpened}, f.events.types())
}

func TestOpenTab_Background_Keeps_Existing_Activation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", true)

	tab := f.state.OpenTab("bob", false)

	req.True(tab.IsActive)
	req.True(f.state.HasActiveTab())
}

func TestActivateTab_Unmatched_Label_Clears_Activation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", true)
	f.state.OpenTab("carol", false)
	f.events.reset()

	// When activating nothing
	f.state.ActivateTab("")

	// Then no tab is active and only the summary fires
	req.False(f.state.HasActiveTab())
	_, ok := f.state.ActiveTab()
	req.False(ok)
	req.Equal([]event.Type{event.TabsUpdated}, f.events.types())
}

func TestCloseTab_Active(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", false)
	f.state.OpenTab("carol", true)
	f.events.reset()

	f.state.CloseTab("carol")

	req.Equal([]string{"bob"}, labels(f.state.Tabs()))
	req.False(f.state.HasActiveTab())
	req.Equal([]event.Type{event.TabDeactivated, event.TabClosed, event.TabsUpdated}, f.events.types())
	req.Equal([]any{event.TabChange{Label: "carol"}}, f.events.payloads(event.TabClosed))
}

func TestCloseTab_Unknown_Is_A_Noop(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", true)
	f.events.reset()

	f.state.CloseTab("dave")

	req.Equal([]string{"bob"}, labels(f.state.Tabs()))
	req.Empty(f.events.types())
	_, ok := f.state.FindTab("dave")
	req.False(ok)
}

func TestDeactivateTab(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", true)
	f.events.reset()

	f.state.DeactivateTab("bob")
	f.state.DeactivateTab("dave")

	tab, ok := f.state.FindTab("bob")
	req.True(ok)
	req.False(tab.IsActive)
	req.Equal([]event.Type{event.TabDeactivated, event.TabsUpdated}, f.events.types())
}

func TestHasActiveTab_Requires_Exactly_One(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.state.OpenTab("bob", false)
	f.state.OpenTab("carol", false)

	// Two active tabs can only be forced from inside the package
	f.state.mu.Lock()
	for _, tab := range f.state.tabs {
		tab.IsActive = true
	}
	f.state.mu.Unlock()

	req.False(f.state.HasActiveTab())
}
