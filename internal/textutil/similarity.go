package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Similarity compares two free-text strings after folding. Identical folded
// strings score 1 even when they tokenize to nothing (e.g. "!!!").
func Similarity(a, b string) float64 {
	if Fold(a) == Fold(b) {
		return 1
	}
	return CosineSimilarity(NewFingerprint(a), NewFingerprint(b))
}

// SameRecording reports whether two title/artist pairs plausibly name the
// same recording. Titles are compared without edition qualifiers.
func SameRecording(titleA, artistA, titleB, artistB string, threshold float64) bool {
	titleScore := Similarity(StripQualifiers(titleA), StripQualifiers(titleB))
	if titleScore < threshold {
		return false
	}
	return Similarity(artistA, artistB) >= threshold
}
