// Package storage keeps the catalogue of result sources in PocketBase.
//
// Only the location of result files is stored. Vote tallies are rebuilt from
// those files on every run.
package storage

import (
	"github.com/pkg/errors"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/migrations/logs"
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"
	"github.com/pocketbase/pocketbase/tools/migrate"

	"elections/internal/models"
)

const sourcesCollection = "result_sources"

// ErrSourceNotFound is returned when no result source has the requested id.
var ErrSourceNotFound = errors.New("result source not found")

type PocketBaseStore struct {
	app *pocketbase.PocketBase
}

// NewPocketBaseStore opens (or creates) the PocketBase data dir, applies the
// system migrations and makes sure the sources collection exists.
func NewPocketBaseStore(dataDir string) (*PocketBaseStore, error) {
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:  dataDir,
		HideStartBanner: true,
	})

	if err := app.Bootstrap(); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap PocketBase")
	}

	if err := runMigrations(app); err != nil {
		return nil, errors.Wrap(err, "failed to run PocketBase migrations")
	}

	if err := ensureCollection(app); err != nil {
		return nil, errors.Wrap(err, "failed to ensure collection exists")
	}

	return &PocketBaseStore{app: app}, nil
}

func runMigrations(app *pocketbase.PocketBase) error {
	connections := []struct {
		db   *dbx.DB
		list migrate.MigrationsList
	}{
		{db: app.DB(), list: migrations.AppMigrations},
		{db: app.LogsDB(), list: logs.LogsMigrations},
	}
	for _, c := range connections {
		runner, err := migrate.NewRunner(c.db, c.list)
		if err != nil {
			return err
		}
		if _, err := runner.Up(); err != nil {
			return err
		}
	}
	return app.RefreshSettings()
}

func ensureCollection(app *pocketbase.PocketBase) error {
	if _, err := app.Dao().FindCollectionByNameOrId(sourcesCollection); err == nil {
		return nil
	}

	collection := &pbModels.Collection{
		Name: sourcesCollection,
		Type: pbModels.CollectionTypeBase,
		Schema: schema.NewSchema(
			&schema.SchemaField{
				Name:     "jurisdiction",
				Type:     schema.FieldTypeText,
				Required: true,
			},
			&schema.SchemaField{
				Name:     "election_date",
				Type:     schema.FieldTypeText,
				Required: true,
			},
			&schema.SchemaField{
				Name:     "link",
				Type:     schema.FieldTypeText,
				Required: true,
			},
			&schema.SchemaField{
				Name:     "parse_method",
				Type:     schema.FieldTypeSelect,
				Required: true,
				Options: &schema.SelectOptions{
					MaxSelect: 1,
					Values:    []string{string(models.ParseMethodCSV), string(models.ParseMethodZIP)},
				},
			},
		),
	}

	if err := app.Dao().SaveCollection(collection); err != nil {
		return errors.Wrap(err, "failed to save collection")
	}
	return nil
}

func (s *PocketBaseStore) SaveResultSource(source *models.ResultSource) error {
	collection, err := s.app.Dao().FindCollectionByNameOrId(sourcesCollection)
	if err != nil {
		return errors.Wrap(err, "failed to find collection")
	}

	record := pbModels.NewRecord(collection)
	setSource(record, source)

	if err := s.app.Dao().SaveRecord(record); err != nil {
		return errors.Wrap(err, "failed to save record")
	}

	source.ID = record.Id
	return nil
}

func (s *PocketBaseStore) GetResultSource(id string) (*models.ResultSource, error) {
	record, err := s.app.Dao().FindRecordById(sourcesCollection, id)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceNotFound, "id %q: %v", id, err)
	}

	source := toSource(record)
	return &source, nil
}

func (s *PocketBaseStore) GetAllResultSources() ([]models.ResultSource, error) {
	return s.findSources()
}

// FindResultSources returns the sources registered for a jurisdiction.
func (s *PocketBaseStore) FindResultSources(jurisdiction string) ([]models.ResultSource, error) {
	return s.findSources(dbx.HashExp{"jurisdiction": jurisdiction})
}

func (s *PocketBaseStore) findSources(exprs ...dbx.Expression) ([]models.ResultSource, error) {
	records, err := s.app.Dao().FindRecordsByExpr(sourcesCollection, exprs...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch result sources")
	}

	sources := make([]models.ResultSource, len(records))
	for i, record := range records {
		sources[i] = toSource(record)
	}
	return sources, nil
}

func (s *PocketBaseStore) UpdateResultSource(id string, source *models.ResultSource) error {
	record, err := s.app.Dao().FindRecordById(sourcesCollection, id)
	if err != nil {
		return errors.Wrapf(ErrSourceNotFound, "id %q: %v", id, err)
	}

	setSource(record, source)

	if err := s.app.Dao().SaveRecord(record); err != nil {
		return errors.Wrap(err, "failed to update record")
	}

	source.ID = record.Id
	return nil
}

func (s *PocketBaseStore) DeleteResultSource(id string) error {
	record, err := s.app.Dao().FindRecordById(sourcesCollection, id)
	if err != nil {
		return errors.Wrapf(ErrSourceNotFound, "id %q: %v", id, err)
	}

	if err := s.app.Dao().DeleteRecord(record); err != nil {
		return errors.Wrap(err, "failed to delete record")
	}

	return nil
}

// Close releases the PocketBase database handles.
func (s *PocketBaseStore) Close() error {
	return s.app.ResetBootstrapState()
}

func setSource(record *pbModels.Record, source *models.ResultSource) {
	record.Set("jurisdiction", source.Jurisdiction)
	record.Set("election_date", source.Date)
	record.Set("link", source.Link)
	record.Set("parse_method", string(source.ParseMethod))
}

func toSource(record *pbModels.Record) models.ResultSource {
	return models.ResultSource{
		ID:           record.Id,
		Jurisdiction: record.GetString("jurisdiction"),
		Date:         record.GetString("election_date"),
		Link:         record.GetString("link"),
		ParseMethod:  models.ParseMethod(record.GetString("parse_method")),
	}
}
