package transcription

// SplitIntoChunks splits buf into ordered, contiguous chunks of at most
// chunkSize bytes; the last chunk may be shorter. Buffers at or under
// the threshold are returned as a single chunk. The returned slices
// alias buf, they are not copies.
func SplitIntoChunks(buf []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 || len(buf) <= chunkSize {
		return [][]byte{buf}
	}

	chunks := make([][]byte, 0, (len(buf)+chunkSize-1)/chunkSize)
	for start := 0; start < len(buf); start += chunkSize {
		end := start + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		chunks = append(chunks, buf[start:end])
	}
	return chunks
}
