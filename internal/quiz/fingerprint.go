package quiz

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Fingerprint derives the uniqueness key for a question generated from topic
// core-content. Salting with the topic, slot, and retry count keeps retries
// and batch slots from colliding even when the source text is identical.
func Fingerprint(coreContent string, subTopicID int64, slot, retry int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d|%d", coreContent, subTopicID, slot, retry)))
	return hex.EncodeToString(sum[:])
}

// SourceHash is the uniqueness key for ad-hoc generation from raw source
// text: the same text always maps to the same stored question.
func SourceHash(sourceText string) string {
	sum := md5.Sum([]byte(sourceText))
	return hex.EncodeToString(sum[:])
}
