package ai

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const defaultHashingDimension = 256

type hashingConfig struct {
	Dimension int `json:"dimension"`
}

// hashingEmbedProvider is an offline embedder: lower-cased word tokens are hashed into a fixed
// number of buckets with a signed count, then the vector is L2-normalised. Needs no network.
type hashingEmbedProvider struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

func NewHashingProvider(dimension int) IEmbedProvider {
	if dimension <= 0 {
		dimension = defaultHashingDimension
	}
	return &hashingEmbedProvider{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]+`),
	}
}

func (p *hashingEmbedProvider) Name() string {
	return "hashing"
}

func (p *hashingEmbedProvider) Embed(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error) {
	res := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res = append(res, p.vector(text))
	}
	return res, nil
}

func (p *hashingEmbedProvider) vector(text string) []float32 {
	vec := make([]float64, p.dimension)
	for _, tok := range p.tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(p.dimension))
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, p.dimension)
	for i, v := range vec {
		if norm > 0 {
			out[i] = float32(v / norm)
		}
	}
	return out
}

func createHashingEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &hashingConfig{}
	if args != nil {
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
	}
	return NewHashingProvider(cfg.Dimension), nil
}

func init() {
	RegisterEmbed("hashing", createHashingEmbedFactory)
}
