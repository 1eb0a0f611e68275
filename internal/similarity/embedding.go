package similarity

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/utils"
	"github.com/disintegration/imaging"
	onnxrt "github.com/yalue/onnxruntime_go"
)

// Embedder maps an image to a fixed-length feature vector.
type Embedder interface {
	Embed(img image.Image) ([]float32, error)
}

// EmbedderConfig holds configuration for the ONNX-backed embedder.
type EmbedderConfig struct {
	// ModelPath is the ONNX embedding model. When the file or the
	// onnxruntime library is missing the embedding strategy degrades to
	// empty results instead of failing the host process.
	ModelPath string
	// InputSize is the square side length the model expects.
	InputSize int
}

// DefaultEmbedderConfig returns defaults matching the published mobilenet
// export.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		ModelPath: "models/font-embedder.onnx",
		InputSize: 224,
	}
}

// ONNXEmbedder runs an image embedding model via ONNX Runtime.
type ONNXEmbedder struct {
	config     EmbedderConfig
	session    *onnxrt.DynamicAdvancedSession
	inputName  string
	outputName string
}

// NewONNXEmbedder loads the embedding model. Any failure (missing model,
// missing runtime library) is returned as an error; callers decide whether
// that disables the strategy or aborts.
func NewONNXEmbedder(config EmbedderConfig) (*ONNXEmbedder, error) {
	if config.InputSize <= 0 {
		config.InputSize = DefaultEmbedderConfig().InputSize
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("embedding model not found: %s", config.ModelPath)
	}

	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect embedding model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("embedding model must have 1 input and 1 output, got %d/%d", len(inputs), len(outputs))
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding session: %w", err)
	}

	return &ONNXEmbedder{
		config:     config,
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

// Close releases the ONNX session.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
		e.session = nil
	}
	return nil
}

// Embed resizes the image to the model input, runs inference and returns
// the flattened output vector.
func (e *ONNXEmbedder) Embed(img image.Image) ([]float32, error) {
	if e.session == nil {
		return nil, errors.New("embedder is closed")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	size := e.config.InputSize
	resized := imaging.Resize(img, size, size, imaging.Lanczos)
	data := toNCHW(resized, size)

	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(1, 3, int64(size), int64(size)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := e.session.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run embedding model: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected embedding output type")
	}
	raw := out.GetData()
	vector := make([]float32, len(raw))
	copy(vector, raw)
	return vector, nil
}

// toNCHW converts an image to a [1,3,H,W] float32 buffer scaled to [0,1].
func toNCHW(img *image.NRGBA, size int) []float32 {
	data := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*img.Stride + x*4
			pos := y*size + x
			data[pos] = float32(img.Pix[i]) / 255.0
			data[plane+pos] = float32(img.Pix[i+1]) / 255.0
			data[2*plane+pos] = float32(img.Pix[i+2]) / 255.0
		}
	}
	return data
}

// ComputeCatalogEmbeddings embeds every sample image in the catalog,
// storing one vector per sample on the corresponding entry. Unreadable
// samples leave a nil slot so sample order stays aligned.
func ComputeCatalogEmbeddings(db fontdb.Database, embedder Embedder) {
	for id, entry := range db {
		embeddings := make([][]float32, len(entry.Samples))
		for i, samplePath := range entry.Samples {
			img, _, err := utils.LoadImage(samplePath)
			if err != nil {
				slog.Warn("skipping sample for embedding", "font", id, "sample", samplePath, "error", err)
				continue
			}
			vec, err := embedder.Embed(img)
			if err != nil {
				slog.Warn("embedding failed for sample", "font", id, "sample", samplePath, "error", err)
				continue
			}
			embeddings[i] = vec
		}
		entry.Embeddings = embeddings
		db[id] = entry
	}
}

// EmbeddingStrategy scores crops against the catalog via learned
// embeddings and nearest-neighbor search.
type EmbeddingStrategy struct {
	embedder Embedder
	index    *Index
	topK     int
}

// DefaultTopK is the number of neighbors returned per crop query.
const DefaultTopK = 10

// NewEmbeddingStrategy builds the strategy from catalog embeddings. A nil
// embedder produces a strategy that yields empty results, which lets
// callers fall back to the pixel-structural strategy gracefully.
func NewEmbeddingStrategy(db fontdb.Database, embedder Embedder, topK int) *EmbeddingStrategy {
	if topK <= 0 {
		topK = DefaultTopK
	}
	index := NewIndex()
	for _, id := range db.FontIDs() {
		for _, vec := range db[id].Embeddings {
			if len(vec) > 0 {
				index.Add(id, vec)
			}
		}
	}
	return &EmbeddingStrategy{embedder: embedder, index: index, topK: topK}
}

// Name identifies the strategy in logs and CLI output.
func (s *EmbeddingStrategy) Name() string { return "embedding" }

// Available reports whether the strategy can actually produce scores.
func (s *EmbeddingStrategy) Available() bool {
	return s.embedder != nil && s.index.Len() > 0
}

// ScoreAgainstCatalog embeds the query crop and returns the top-K most
// similar catalog entries. When the embedder is unavailable the result is
// empty, never an error; absence of the optional model must not crash a
// detection request.
func (s *EmbeddingStrategy) ScoreAgainstCatalog(img image.Image) ([]FontScore, error) {
	if !s.Available() {
		return nil, nil
	}
	vec, err := s.embedder.Embed(img)
	if err != nil {
		slog.Warn("embedding query failed, returning no scores", "error", err)
		return nil, nil
	}
	return s.index.Query(vec, s.topK), nil
}
