package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/utils"
)

// OrphanedDocument is a header left without items by an interrupted write.
type OrphanedDocument struct {
	Document  DocumentKind `json:"document"`
	Id        string       `json:"id"`
	Number    string       `json:"number"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FindOrphanedDocuments lists the caller's invoices and purchases that have no
// items and were last written at or before olderThan. An update writes the
// header before it replaces the items, so a document being edited is never
// older than the cutoff.
func FindOrphanedDocuments(ctx context.Context, store *Store, olderThan time.Time) ([]OrphanedDocument, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := findOrphans(ctx, invoiceDocument, store, businessId, olderThan, func(i *Invoice) string { return i.InvoiceNumber })
	if err != nil {
		return nil, err
	}
	purchases, err := findOrphans(ctx, purchaseDocument, store, businessId, olderThan, func(p *Purchase) string { return p.PurchaseNumber })
	if err != nil {
		return nil, err
	}
	return append(invoices, purchases...), nil
}

// DeleteOrphanedDocuments removes the given headers, skipping any that gained
// items or were written after olderThan since they were listed. Returns the
// number deleted.
func DeleteOrphanedDocuments(ctx context.Context, store *Store, docs []OrphanedDocument, olderThan time.Time) (int, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, doc := range docs {
		var n int64
		switch doc.Document {
		case DocumentKindInvoice:
			n, err = deleteOrphan(ctx, invoiceDocument, store, businessId, doc.Id, olderThan)
		case DocumentKindPurchase:
			n, err = deleteOrphan(ctx, purchaseDocument, store, businessId, doc.Id, olderThan)
		default:
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}
	if deleted > 0 {
		clearReportCache(ctx, businessId)
	}
	return deleted, nil
}

func findOrphans[H Row, I Row](ctx context.Context, def documentSpec[H, I], store *Store, businessId string, olderThan time.Time, number func(*H) string) ([]OrphanedDocument, error) {
	headers, err := def.headers(store).Find(ctx, Filter{BusinessId: businessId, UpdatedTo: &olderThan})
	if err != nil {
		return nil, utils.WrapStoreError("find_"+string(def.kind), err)
	}
	if len(headers) == 0 {
		return nil, nil
	}
	items, err := def.items(store).Find(ctx, ByOwner(businessId))
	if err != nil {
		return nil, utils.WrapStoreError("find_"+string(def.kind)+"_items", err)
	}
	withItems := make(map[string]bool)
	for _, item := range items {
		withItems[(*item).GetParentId()] = true
	}
	var result []OrphanedDocument
	for _, h := range headers {
		if withItems[(*h).GetId()] {
			continue
		}
		doc := OrphanedDocument{
			Document:  def.kind,
			Id:        (*h).GetId(),
			Number:    number(h),
			CreatedAt: (*h).GetCreatedAt(),
		}
		if u, ok := any(*h).(updatedRow); ok {
			doc.UpdatedAt = u.GetUpdatedAt()
		}
		result = append(result, doc)
	}
	return result, nil
}

// deleteOrphan deletes the header only while it is still item-less and not
// written after olderThan. The updated_at bound is part of the delete itself,
// so an update that starts after the item check still wins.
func deleteOrphan[H Row, I Row](ctx context.Context, def documentSpec[H, I], store *Store, businessId string, id string, olderThan time.Time) (int64, error) {
	items, err := def.items(store).Find(ctx, ByParent(businessId, id))
	if err != nil {
		return 0, utils.WrapStoreError("find_"+string(def.kind)+"_items", err)
	}
	if len(items) > 0 {
		return 0, nil
	}
	n, err := def.headers(store).Delete(ctx, Filter{BusinessId: businessId, Id: id, UpdatedTo: &olderThan})
	if err != nil {
		return 0, utils.WrapStoreError("delete_"+string(def.kind), err)
	}
	return n, nil
}
