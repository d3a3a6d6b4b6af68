package db

import (
	"log/slog"

	"sitewatch/db/jsonfile"
	"sitewatch/db/repo"
)

type IStorage interface {
	VisitorLog() repo.IVisitorLogStorage
}

type fileStorage struct {
	visits *jsonfile.VisitorLog
	log    *slog.Logger
}

func NewStorage(path string, log *slog.Logger) IStorage {
	return &fileStorage{
		visits: jsonfile.NewVisitorLog(path, log),
		log:    log,
	}
}

func (s *fileStorage) VisitorLog() repo.IVisitorLogStorage {
	return s.visits
}
