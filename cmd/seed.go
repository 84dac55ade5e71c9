package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/kilimobot/kilimobot/internal/progress"
	"github.com/kilimobot/kilimobot/internal/vectordb"
)

// passageTargetSize merges short paragraphs until a chunk is roughly this
// many characters.
const passageTargetSize = 600

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index advisory documents for similarity search",
	Long: `Reads the documents under the configured seed directory, splits them
into passages, embeds them and persists the vector index used by the
knowledge retriever. Re-running updates existing passages in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := createEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		store, err := vectordb.NewChromemStore(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}

		ctx := context.Background()
		vectorDir := filepath.Join(cfg.DataDir, "vectordb")
		if err := store.Load(ctx, vectorDir); err == nil && store.Count() > 0 {
			fmt.Printf("Loaded existing index with %d passages\n", store.Count())
		}

		files, err := matchSeedFiles(cfg.Knowledge.SeedDir, cfg.Knowledge.Include)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no documents matched %v under %s", cfg.Knowledge.Include, cfg.Knowledge.SeedDir)
		}

		reporter := progress.NewReporter()
		reporter.Start(len(files))

		total := 0
		for i, path := range files {
			reporter.Update(i+1, filepath.Base(path))
			passages, err := passagesFromFile(cfg.Knowledge.SeedDir, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nskipping %s: %v\n", path, err)
				continue
			}
			if err := store.AddPassages(ctx, passages); err != nil {
				return fmt.Errorf("indexing %s: %w", path, err)
			}
			total += len(passages)
		}
		reporter.Finish()

		if err := store.Persist(ctx, vectorDir); err != nil {
			return fmt.Errorf("persisting vector store: %w", err)
		}

		fmt.Printf("Indexed %d passages from %d documents into %s\n", total, len(files), vectorDir)
		return nil
	},
}

// matchSeedFiles resolves the include globs relative to the seed directory.
func matchSeedFiles(seedDir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(seedDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// passagesFromFile splits one document into indexable passages. The topic
// comes from the document's subdirectory when it names one.
func passagesFromFile(seedDir, path string) ([]vectordb.Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	chunks := chunkText(string(data))
	base := filepath.Base(path)
	topic := topicFromPath(seedDir, path)

	passages := make([]vectordb.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		passages = append(passages, vectordb.Passage{
			ID:      fmt.Sprintf("%s#%d", path, i),
			Content: chunk,
			Metadata: vectordb.PassageMetadata{
				Topic:  topic,
				Source: path,
				Title:  strings.TrimSuffix(base, filepath.Ext(base)),
			},
		})
	}
	return passages, nil
}

// chunkText splits on blank lines and merges short paragraphs.
func chunkText(text string) []string {
	var chunks []string
	var current strings.Builder

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > passageTargetSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// topicFromPath maps the first subdirectory under the seed directory to a
// topic when the name matches one.
func topicFromPath(seedDir, path string) vectordb.Topic {
	rel, err := filepath.Rel(seedDir, path)
	if err != nil {
		return vectordb.TopicGeneral
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return vectordb.TopicGeneral
	}

	switch vectordb.Topic(parts[0]) {
	case vectordb.TopicCrop, vectordb.TopicLivestock, vectordb.TopicPest,
		vectordb.TopicClimate, vectordb.TopicMarket, vectordb.TopicExtension:
		return vectordb.Topic(parts[0])
	default:
		return vectordb.TopicGeneral
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
