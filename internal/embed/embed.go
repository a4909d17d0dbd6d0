// Package embed produces sentence embeddings locally with an ONNX MiniLM
// encoder, the same model family the search service indexes with. Used by
// the indexing pipeline to vectorize the message corpus before upsert.
package embed

import (
	"fmt"
	"math"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// maxSeqLen caps token sequences, matching the MiniLM context window used
// at indexing time.
const maxSeqLen = 128

// Embedder turns texts into dense vectors.
type Embedder interface {
	Embed(text string) ([]float32, error)
	EmbedBatch(texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// MiniLM is a local BERT-style sentence encoder: WordPiece tokenization,
// ONNX inference, masked mean pooling, L2 normalization.
type MiniLM struct {
	session *onnxSession
	tok     *tokenizer.Tokenizer
}

// NewMiniLM loads the ONNX model and the tokenizer definition
// (tokenizer.json exported alongside the model).
func NewMiniLM(modelPath, tokenizerPath string) (*MiniLM, error) {
	sess, err := newONNXSession(modelPath)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	tok, err := pretrained.FromFile(tokenizerPath)
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("embed: loading tokenizer %s: %w", tokenizerPath, err)
	}

	return &MiniLM{session: sess, tok: tok}, nil
}

// Dimensions returns the output vector width.
func (m *MiniLM) Dimensions() int {
	return int(m.session.hiddenDim)
}

// Embed encodes a single text.
func (m *MiniLM) Embed(text string) ([]float32, error) {
	vecs, err := m.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes texts in one forward pass, padded to the longest
// sequence in the batch.
func (m *MiniLM) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type seq struct {
		ids   []int
		types []int
		mask  []int
	}
	seqs := make([]seq, len(texts))
	seqLen := 0
	for i, text := range texts {
		enc, err := m.tok.EncodeSingle(text, true)
		if err != nil {
			return nil, fmt.Errorf("embed: tokenizing: %w", err)
		}
		ids, types, mask := enc.Ids, enc.TypeIds, enc.AttentionMask
		if len(ids) > maxSeqLen {
			ids, types, mask = ids[:maxSeqLen], types[:maxSeqLen], mask[:maxSeqLen]
		}
		seqs[i] = seq{ids: ids, types: types, mask: mask}
		if len(ids) > seqLen {
			seqLen = len(ids)
		}
	}

	batch := int64(len(texts))
	flatIDs := make([]int64, int(batch)*seqLen)
	flatTypes := make([]int64, int(batch)*seqLen)
	flatMask := make([]int64, int(batch)*seqLen)
	for i, s := range seqs {
		base := i * seqLen
		for j := range s.ids {
			flatIDs[base+j] = int64(s.ids[j])
			flatTypes[base+j] = int64(s.types[j])
			flatMask[base+j] = int64(s.mask[j])
		}
		// Padding positions stay zero: pad id, type 0, mask 0.
	}

	hidden, err := m.session.infer(flatIDs, flatMask, flatTypes, batch, int64(seqLen))
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	dim := int(m.session.hiddenDim)
	out := make([][]float32, len(texts))
	for i := range texts {
		pooled := meanPool(hidden, flatMask, i, seqLen, dim)
		normalize(pooled)
		out[i] = pooled
	}
	return out, nil
}

// Close releases the inference session.
func (m *MiniLM) Close() error {
	return m.session.close()
}

// meanPool averages the hidden states of batch item i over its non-padding
// positions.
func meanPool(hidden []float32, mask []int64, i, seqLen, dim int) []float32 {
	pooled := make([]float32, dim)
	count := 0
	for j := 0; j < seqLen; j++ {
		if mask[i*seqLen+j] == 0 {
			continue
		}
		count++
		base := (i*seqLen + j) * dim
		for d := 0; d < dim; d++ {
			pooled[d] += hidden[base+d]
		}
	}
	if count > 0 {
		inv := 1 / float32(count)
		for d := range pooled {
			pooled[d] *= inv
		}
	}
	return pooled
}

// normalize scales v to unit length in place. Zero vectors stay zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
