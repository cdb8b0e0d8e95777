package memory_test

import (
	"testing"

	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/ports"
)

func TestScriptStore_Contract(t *testing.T) {
	ports.RunScriptStoreContract(t, memory.NewScriptStore())
}

func TestImageStore_Contract(t *testing.T) {
	ports.RunImageStoreContract(t, memory.NewImageStore())
}
