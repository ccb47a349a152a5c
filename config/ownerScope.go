package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmdatafocus/billing_backend/appctx"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnscopedOwnerQuery is returned for a query, update or delete on a table
// with a business_id column whose WHERE clause does not filter on it.
var ErrUnscopedOwnerQuery = errors.New("owner_scope: statement on owned table without business_id filter")

// OwnerScopePlugin rejects every query/update/delete on a table with a
// business_id column that does not filter on business_id. The statement never
// reaches the database.
//
// Raw SQL is not covered; include business_id yourself.
type OwnerScopePlugin struct{}

func NewOwnerScopePlugin() *OwnerScopePlugin { return &OwnerScopePlugin{} }

func (p *OwnerScopePlugin) Name() string { return "owner_scope" }

func (p *OwnerScopePlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("owner_scope:query", ownerScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("owner_scope:row", ownerScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("owner_scope:update", ownerScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("owner_scope:delete", ownerScopeCallback); err != nil {
		return err
	}
	return nil
}

func ownerScopeCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Schema == nil {
		return
	}
	if db.Statement.Schema.LookUpField("business_id") == nil {
		return
	}
	if whereHasBusinessId(db.Statement.Clauses["WHERE"]) {
		return
	}
	businessId := ""
	if ctx := db.Statement.Context; ctx != nil {
		businessId, _ = appctx.GetString(ctx, appctx.ContextKeyBusinessId)
	}
	GetLogger().WithFields(logrus.Fields{
		"table":       db.Statement.Table,
		"business_id": businessId,
	}).Error("owner_scope: rejected unscoped statement")
	_ = db.AddError(fmt.Errorf("%w (table %s)", ErrUnscopedOwnerQuery, db.Statement.Table))
}

func whereHasBusinessId(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasBusinessId(e) {
			return true
		}
	}
	return false
}

func exprHasBusinessId(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsBusinessId(v.Column)
	case clause.IN:
		return colIsBusinessId(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasBusinessId(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "business_id")
	default:
		return false
	}
}

func colIsBusinessId(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "business_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "business_id")
	default:
		return false
	}
}
