package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("billing_backend/models")

const (
	documentOpCreate = "create"
	documentOpUpdate = "update"
	documentOpDelete = "delete"
)

// DocumentWriter persists invoices and purchases: header first, then items,
// then stock. A failure after the header is written comes back as a
// *utils.PartialWriteError naming the step.
type DocumentWriter struct {
	store     *Store
	reversal  config.StockReversalPolicy
	atomic    bool
	publisher DocumentEventPublisher
}

type DocumentWriterOption func(*DocumentWriter)

func WithStockReversal(policy config.StockReversalPolicy) DocumentWriterOption {
	return func(w *DocumentWriter) { w.reversal = policy }
}

// WithAtomicWrites wraps every write in a store transaction when the store has them.
func WithAtomicWrites(atomic bool) DocumentWriterOption {
	return func(w *DocumentWriter) { w.atomic = atomic }
}

func WithEventPublisher(p DocumentEventPublisher) DocumentWriterOption {
	return func(w *DocumentWriter) { w.publisher = p }
}

// NewDocumentWriter takes its defaults from STOCK_REVERSAL_POLICY and ATOMIC_DOCUMENT_WRITES.
func NewDocumentWriter(store *Store, opts ...DocumentWriterOption) *DocumentWriter {
	w := &DocumentWriter{
		store:    store,
		reversal: config.GetStockReversalPolicy(),
		atomic:   config.AtomicDocumentWrites(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *DocumentWriter) Store() *Store {
	return w.store
}

// documentSpec binds the generic write sequence to one document's tables.
type documentSpec[H Row, I Row] struct {
	kind          DocumentKind
	headers       func(*Store) Table[H]
	items         func(*Store) Table[I]
	updateColumns []string
	// stockEffect returns the product and the signed stock movement of one item
	stockEffect func(item *I) (string, int)
}

func createDocument[H Row, I Row](ctx context.Context, w *DocumentWriter, def documentSpec[H, I], header *H, items []*I) error {
	id := (*header).GetId()
	businessId := (*header).GetBusinessId()
	return w.execute(ctx, func(s *Store) error {
		if _, err := def.headers(s).Insert(ctx, header); err != nil {
			return utils.WrapStoreError("insert_"+string(def.kind), err)
		}
		if _, err := def.items(s).Insert(ctx, items...); err != nil {
			return partialWrite(def.kind, id, utils.StepInsertItems, err)
		}
		if err := applyStock(ctx, s, businessId, def, items, 1); err != nil {
			return partialWrite(def.kind, id, utils.StepAdjustStock, err)
		}
		return nil
	})
}

// updateDocument writes the header columns, drops every stored item and
// inserts the new set. The old items are only read when their stock effect
// has to be undone.
func updateDocument[H Row, I Row](ctx context.Context, w *DocumentWriter, def documentSpec[H, I], businessId string, id string, header *H, items []*I) (*H, error) {
	if id == "" {
		return nil, utils.ErrUnauthorized
	}
	var updated *H
	err := w.execute(ctx, func(s *Store) error {
		existing, err := def.headers(s).Find(ctx, ById(businessId, id))
		if err != nil {
			return utils.WrapStoreError("find_"+string(def.kind), err)
		}
		if len(existing) == 0 {
			return utils.ErrUnauthorized
		}
		var oldItems []*I
		if w.reversal == config.StockReversalRestore {
			if oldItems, err = def.items(s).Find(ctx, ByParent(businessId, id)); err != nil {
				return utils.WrapStoreError("find_"+string(def.kind)+"_items", err)
			}
		}

		updated, err = def.headers(s).Update(ctx, ById(businessId, id), header, def.updateColumns...)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.ErrUnauthorized
		}
		if err != nil {
			return utils.WrapStoreError("update_"+string(def.kind), err)
		}

		if _, err := def.items(s).Delete(ctx, ByParent(businessId, id)); err != nil {
			return partialWrite(def.kind, id, utils.StepDeleteItems, err)
		}
		if err := applyStock(ctx, s, businessId, def, oldItems, -1); err != nil {
			return partialWrite(def.kind, id, utils.StepRestoreStock, err)
		}
		if _, err := def.items(s).Insert(ctx, items...); err != nil {
			return partialWrite(def.kind, id, utils.StepInsertItems, err)
		}
		if err := applyStock(ctx, s, businessId, def, items, 1); err != nil {
			return partialWrite(def.kind, id, utils.StepAdjustStock, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// deleteDocument removes the header; the store cascades the items.
func deleteDocument[H Row, I Row](ctx context.Context, w *DocumentWriter, def documentSpec[H, I], businessId string, id string) (*H, error) {
	if id == "" {
		return nil, utils.ErrUnauthorized
	}
	var deleted *H
	err := w.execute(ctx, func(s *Store) error {
		existing, err := def.headers(s).Find(ctx, ById(businessId, id))
		if err != nil {
			return utils.WrapStoreError("find_"+string(def.kind), err)
		}
		if len(existing) == 0 {
			return utils.ErrUnauthorized
		}
		deleted = existing[0]

		var oldItems []*I
		if w.reversal == config.StockReversalRestore {
			if oldItems, err = def.items(s).Find(ctx, ByParent(businessId, id)); err != nil {
				return utils.WrapStoreError("find_"+string(def.kind)+"_items", err)
			}
		}
		n, err := def.headers(s).Delete(ctx, ById(businessId, id))
		if err != nil {
			return utils.WrapStoreError("delete_"+string(def.kind), err)
		}
		if n == 0 {
			return utils.ErrUnauthorized
		}
		if err := applyStock(ctx, s, businessId, def, oldItems, -1); err != nil {
			return partialWrite(def.kind, id, utils.StepRestoreStock, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// applyStock moves stock for every item that references a product. sign -1 undoes the effect.
func applyStock[H Row, I Row](ctx context.Context, s *Store, businessId string, def documentSpec[H, I], items []*I, sign int) error {
	for _, item := range items {
		productId, delta := def.stockEffect(item)
		if productId == "" || delta == 0 {
			continue
		}
		if err := s.Stock.AdjustStock(ctx, businessId, productId, delta*sign); err != nil {
			return err
		}
	}
	return nil
}

func partialWrite(kind DocumentKind, id string, step string, err error) error {
	return &utils.PartialWriteError{Document: string(kind), DocumentId: id, Step: step, Err: err}
}

// execute runs one write sequence, inside a transaction when atomic writes
// are on. A rolled back sequence left nothing behind, so a partial write is
// reported as a plain store failure of the step that broke.
func (w *DocumentWriter) execute(ctx context.Context, fn func(s *Store) error) error {
	if !w.atomic || !w.store.SupportsTransactions() {
		return fn(w.store)
	}
	err := w.store.Transaction(ctx, fn)
	var partial *utils.PartialWriteError
	if errors.As(err, &partial) {
		return &utils.StoreError{Op: partial.Step, Err: partial.Err}
	}
	return err
}

// observe wraps one document operation in a span, a write counter and error logging.
func (w *DocumentWriter) observe(ctx context.Context, kind DocumentKind, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, string(kind)+"."+op, trace.WithAttributes(
		attribute.String("document.kind", string(kind)),
		attribute.String("document.operation", op),
	))
	defer span.End()

	err := fn(ctx)
	result := writeResult(err)
	config.DocumentWrites.WithLabelValues(string(kind), op, result).Inc()
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	if result == config.MetricResultPartial || result == config.MetricResultStore {
		config.LogErrorCtx(ctx, config.GetLogger(), "DocumentWriter", string(kind)+"."+op, result, nil, err)
	}
	return err
}

func writeResult(err error) string {
	var partial *utils.PartialWriteError
	switch {
	case err == nil:
		return config.MetricResultOk
	case errors.Is(err, utils.ErrValidationFailed):
		return config.MetricResultValidation
	case errors.Is(err, utils.ErrUnauthorized):
		return config.MetricResultUnauthorized
	case errors.As(err, &partial):
		return config.MetricResultPartial
	default:
		return config.MetricResultStore
	}
}
