package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

func TestEntryStatusWireValues(t *testing.T) {
	// These strings are stored in the journal_entries status column;
	// renaming a constant must not change its stored value.
	assert.Equal(t, "DRAFT", string(domain.EntryStatusDraft))
	assert.Equal(t, "BALANCED", string(domain.EntryBalanced))
	assert.Equal(t, "POSTED", string(domain.EntryPosted))
	assert.Equal(t, "LINKED", string(domain.EntryLinked))
	assert.Equal(t, "REVERSED", string(domain.EntryReversed))
}
