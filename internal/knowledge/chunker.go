package knowledge

import "strings"

const (
	// DefaultChunkSize is the chunk length in words.
	DefaultChunkSize = 512

	// DefaultChunkOverlap is the number of words shared between
	// consecutive chunks so context is not lost at boundaries.
	DefaultChunkOverlap = 50
)

// CleanText collapses runs of whitespace into single spaces and trims
// the result. Chunking operates on words, so structural whitespace
// carries no information here.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ChunkText splits text into overlapping word windows. A chunkSize
// below 1 falls back to DefaultChunkSize; overlap is clamped to
// chunkSize-1 so the window always advances.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := chunkSize - overlap
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}
