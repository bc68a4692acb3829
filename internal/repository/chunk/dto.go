package chunk

import (
	"time"

	domchunk "github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

// documentRecord is the stored JSON value of one ingested document.
type documentRecord struct {
	ID         string           `json:"id"`
	Collection string           `json:"collection"`
	Metadata   legal.Metadata   `json:"metadata"`
	Chunks     []domchunk.Chunk `json:"chunks"`
	IngestedAt time.Time        `json:"ingested_at"`
}
