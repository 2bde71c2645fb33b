// Package store persists bindings and offers as a single JSON document.
// Reads pass through hujson so hand-added comments and trailing commas in
// the file survive; writes are atomic so a killed process never leaves a
// torn document behind.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/rs/zerolog"
)

const storeFileName = "store.json"

// Store owns the on-disk document. It is not safe for concurrent use by
// multiple processes; dibs is a short-lived CLI and does not lock.
type Store struct {
	path   string
	logger zerolog.Logger
}

type document struct {
	Bindings []types.Binding `json:"bindings"`
	Offers   []types.Offer   `json:"offers"`
}

// New opens (or lazily creates) the store. An empty dir places the file
// under the XDG data directory.
func New(dir string) (*Store, error) {
	var path string
	if dir == "" {
		p, err := xdg.DataFile(filepath.Join("dibs", storeFileName))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreLoad, "could not resolve the data directory")
		}
		path = p
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrStoreLoad, "could not create %s", dir)
		}
		path = filepath.Join(dir, storeFileName)
	}

	return &Store{
		path:   path,
		logger: logging.GetLogger("store"),
	}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrStoreLoad, "could not read %s", s.path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreParse, "%s is not valid JSON", s.path)
	}

	var doc document
	if err := json.Unmarshal(standardized, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreParse, "%s has an unexpected shape", s.path)
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStoreSave, "could not encode the store")
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, errors.ErrStoreSave, "could not write %s", s.path)
	}
	return nil
}

// GetBinding looks a binding up by extension.
func (s *Store) GetBinding(ext string) (types.Binding, bool, error) {
	doc, err := s.load()
	if err != nil {
		return types.Binding{}, false, err
	}
	ext = types.NormalizeExtension(ext)
	for _, b := range doc.Bindings {
		if types.NormalizeExtension(b.Extension) == ext {
			return b, true, nil
		}
	}
	return types.Binding{}, false, nil
}

// CreateBinding inserts a new binding record. The caller validates the
// lifecycle transition first; the store only enforces uniqueness per
// extension.
func (s *Store) CreateBinding(ext string, info types.AppInfo, st types.BindingState) (types.Binding, error) {
	doc, err := s.load()
	if err != nil {
		return types.Binding{}, err
	}

	ext = types.NormalizeExtension(ext)
	for _, b := range doc.Bindings {
		if types.NormalizeExtension(b.Extension) == ext {
			return types.Binding{}, errors.Newf(errors.ErrAlreadyExists,
				"a binding for .%s already exists", ext)
		}
	}

	now := time.Now().UTC()
	b := types.Binding{
		ID:              uuid.NewString(),
		Extension:       ext,
		ApplicationPath: info.Path,
		AppName:         info.Name,
		BundleOrProgID:  info.BundleOrProgID,
		State:           st,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	doc.Bindings = append(doc.Bindings, b)
	if err := s.save(doc); err != nil {
		return types.Binding{}, err
	}
	return b, nil
}

// UpdateBindingApplication repoints an existing binding at a new
// application and state, clearing its sync status.
func (s *Store) UpdateBindingApplication(id string, info types.AppInfo, st types.BindingState) (types.Binding, error) {
	var updated types.Binding
	err := s.mutateBinding(id, func(b *types.Binding) {
		b.ApplicationPath = info.Path
		b.AppName = info.Name
		b.BundleOrProgID = info.BundleOrProgID
		b.State = st
		b.OSSynced = false
		b.OSSyncedAt = nil
		updated = *b
	})
	return updated, err
}

// SetBindingState moves a binding to a new lifecycle state.
func (s *Store) SetBindingState(id string, st types.BindingState) error {
	return s.mutateBinding(id, func(b *types.Binding) {
		b.State = st
		if st != types.BindingActive {
			b.OSSynced = false
			b.OSSyncedAt = nil
		}
	})
}

// FindActive returns the bindings eligible for OS synchronization.
func (s *Store) FindActive() ([]types.Binding, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var active []types.Binding
	for _, b := range doc.Bindings {
		if b.State == types.BindingActive {
			active = append(active, b)
		}
	}
	return active, nil
}

// ListBindings returns every binding on record.
func (s *Store) ListBindings() ([]types.Binding, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Bindings, nil
}

// UpdateSyncFields records the outcome of a handler call. Only the three
// OS-tracking fields and UpdatedAt change; everything else is owned by the
// command paths.
func (s *Store) UpdateSyncFields(id string, osSynced bool, osSyncedAt *time.Time, previousOSDefault string) error {
	return s.mutateBinding(id, func(b *types.Binding) {
		b.OSSynced = osSynced
		b.OSSyncedAt = osSyncedAt
		b.PreviousOSDefault = previousOSDefault
	})
}

func (s *Store) mutateBinding(id string, mutate func(*types.Binding)) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Bindings {
		if doc.Bindings[i].ID == id {
			mutate(&doc.Bindings[i])
			doc.Bindings[i].UpdatedAt = time.Now().UTC()
			return s.save(doc)
		}
	}
	return errors.Newf(errors.ErrNotFound, "no binding with id %s", id)
}

// GetOffer looks an offer up by name.
func (s *Store) GetOffer(name string) (types.Offer, bool, error) {
	doc, err := s.load()
	if err != nil {
		return types.Offer{}, false, err
	}
	for _, o := range doc.Offers {
		if o.Name == name {
			return o, true, nil
		}
	}
	return types.Offer{}, false, nil
}

// CreateOffer inserts a new offer pointing at a binding.
func (s *Store) CreateOffer(name, bindingID string) (types.Offer, error) {
	doc, err := s.load()
	if err != nil {
		return types.Offer{}, err
	}
	for _, o := range doc.Offers {
		if o.Name == name {
			return types.Offer{}, errors.Newf(errors.ErrAlreadyExists,
				"an offer named %q already exists", name)
		}
	}

	now := time.Now().UTC()
	o := types.Offer{
		ID:        uuid.NewString(),
		Name:      name,
		BindingID: bindingID,
		State:     types.OfferCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Offers = append(doc.Offers, o)
	if err := s.save(doc); err != nil {
		return types.Offer{}, err
	}
	return o, nil
}

// SetOfferState moves an offer to a new lifecycle state.
func (s *Store) SetOfferState(id string, st types.OfferState) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Offers {
		if doc.Offers[i].ID == id {
			doc.Offers[i].State = st
			doc.Offers[i].UpdatedAt = time.Now().UTC()
			return s.save(doc)
		}
	}
	return errors.Newf(errors.ErrNotFound, "no offer with id %s", id)
}

// ListOffers returns every offer on record.
func (s *Store) ListOffers() ([]types.Offer, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Offers, nil
}
