// Package analytics summarises a corpus of extracted tag sets: how many
// records carried tags, how many tags per record, which entities dominate,
// and which of them look like noise.
package analytics
