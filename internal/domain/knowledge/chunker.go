package knowledge

// ChunkText splits text into fixed-size sliding windows of runes, so
// multi-byte characters never straddle a chunk boundary. The last chunk may
// be shorter than size. Overlap must be smaller than size.
func ChunkText(text string, size, overlap int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
