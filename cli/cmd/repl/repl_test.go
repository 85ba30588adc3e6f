package repl

import (
	"strings"
	"testing"
)

func TestHelpMessage(t *testing.T) {
	help := helpMessage()

	if strings.HasSuffix(help, "\n") {
		t.Error("helpMessage() ends with a newline; tea.Println adds one")
	}

	for _, cmd := range ctrlCommands {
		if !strings.Contains(help, "  "+cmd+" ") {
			t.Errorf("helpMessage() does not describe %q", cmd)
		}
	}
}
