package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mapgpt/mapgpt-go/internal/config"
	"github.com/mapgpt/mapgpt-go/internal/knowledge"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/r2client"
)

// Knowledge base sources, also used as the metrics label.
const (
	SourceR2       = "r2"
	SourceFile     = "file"
	SourceEmbedded = "embedded"
)

// objectDownloader fetches one object. *r2client.Client satisfies it.
type objectDownloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// LoadKnowledge resolves the knowledge base: R2 object, then local file, then
// the embedded default. An unreachable R2 object falls back with a warning; a
// broken local file is an error.
func LoadKnowledge(ctx context.Context, cfg config.KnowledgeConfig, log *logger.Logger) (*knowledge.Base, string, error) {
	var dl objectDownloader
	if cfg.R2.Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    cfg.R2.Endpoint(),
			AccessKeyID: cfg.R2.AccessKeyID,
			SecretKey:   cfg.R2.SecretAccessKey,
			BucketName:  cfg.R2.BucketName,
		})
		if err != nil {
			return nil, "", fmt.Errorf("r2 client: %w", err)
		}
		dl = client
	}
	return loadKnowledge(ctx, cfg, dl, log)
}

func loadKnowledge(ctx context.Context, cfg config.KnowledgeConfig, dl objectDownloader, log *logger.Logger) (*knowledge.Base, string, error) {
	log = log.WithModule("knowledge")

	if dl != nil {
		downloadCtx, cancel := context.WithTimeout(ctx, config.KnowledgeDownload)
		data, err := dl.Download(downloadCtx, cfg.R2.Key)
		cancel()
		if err == nil {
			base, loadErr := knowledge.Load(bytes.NewReader(data))
			if loadErr == nil {
				log.WithField("key", cfg.R2.Key).Info("Knowledge base loaded from R2")
				return base, SourceR2, nil
			}
			err = loadErr
		}
		log.WithError(err).WithField("key", cfg.R2.Key).Warn("R2 knowledge object unavailable, falling back")
	}

	if cfg.File != "" {
		base, err := knowledge.LoadFile(cfg.File)
		if err != nil {
			return nil, "", fmt.Errorf("knowledge file %s: %w", cfg.File, err)
		}
		log.WithField("path", cfg.File).Info("Knowledge base loaded from file")
		return base, SourceFile, nil
	}

	return knowledge.Default(), SourceEmbedded, nil
}
