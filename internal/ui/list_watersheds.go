package ui

import (
	"context"
	"fmt"
)

// ListWatersheds handles the UI for viewing the watersheds a click can resolve to
func (m *Menu) ListWatersheds(_ context.Context) {
	list, err := m.Pipeline.ListWatersheds()
	if err != nil {
		m.PrintError(fmt.Sprintf("Error reading watersheds: %s", err.Error()))
		return
	}

	if len(list) == 0 {
		m.PrintWarning("No watersheds found. Check WATERSHEDS_PATH in your .env file.")
		return
	}

	fmt.Fprintf(m.out, "\n%sAvailable watersheds:%s\n", ColorGreen, ColorReset)
	for _, ws := range list {
		if ws.Name != "" {
			fmt.Fprintf(m.out, "%s- %s %s%s\n", ColorGreen, ws.ID, ws.Name, ColorReset)
			continue
		}
		fmt.Fprintf(m.out, "%s- %s%s\n", ColorGreen, ws.ID, ColorReset)
	}
}
