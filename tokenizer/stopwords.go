package tokenizer

// EnglishStopWords is a short list of common English words that rarely help
// discriminate between documents. Use it with WithStopWords.
var EnglishStopWords = []string{
	"the", "a", "an", "be", "is", "are",
	"was", "to", "of", "and", "in", "that",
	"have", "it", "for", "not", "on", "with",
	"as", "you", "do", "at", "this", "but",
	"by", "from",
}
