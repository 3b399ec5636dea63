// Package container holds the process-wide components built at startup and
// hands them to the router. Optional backends are nil when disabled.
package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/config"
	"github.com/oksasatya/tradesync/internal/application"
	"github.com/oksasatya/tradesync/internal/infrastructure/search"
	chartstorage "github.com/oksasatya/tradesync/internal/infrastructure/storage"
	"github.com/oksasatya/tradesync/pkg/helpers"
)

type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	PG     *pgxpool.Pool
	JWT    *helpers.JWTManager

	Redis  *redis.Client
	GCS    *storage.Client
	Rabbit *helpers.RabbitPublisher
	ES     *elasticsearch.Client
}

// MailPublisher returns the email job queue, or nil when RabbitMQ is off.
func (c *Container) MailPublisher() application.JobPublisher {
	if c.Rabbit == nil {
		return nil
	}
	return c.Rabbit
}

// NoteIndex returns the Elasticsearch note index, or nil when search is off.
func (c *Container) NoteIndex() application.NoteIndex {
	if c.ES == nil || c.Cfg.ESNotesIndex == "" {
		return nil
	}
	return search.NewNoteIndex(c.ES, c.Cfg.ESNotesIndex)
}

// ChartStore returns the GCS chart bucket, or nil when uploads are off.
func (c *Container) ChartStore() application.ChartStore {
	if c.GCS == nil || c.Cfg.GCSBucket == "" {
		return nil
	}
	return chartstorage.NewChartStore(c.GCS, c.Cfg.GCSBucket)
}

// Close releases every backend that was opened.
func (c *Container) Close() {
	c.Rabbit.Close()
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PG != nil {
		c.PG.Close()
	}
}
