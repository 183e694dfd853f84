package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// linkTable describes a many-to-many join table and the table its targets
// live in.
type linkTable struct {
	table       string
	ownerCol    string
	targetCol   string
	targetTable string
	softDeleted bool   // target table carries deleted_at
	notFound    string // message format for an unknown target id
	field       string // input field carrying the target ids
	newRow      func(owner, target uuid.UUID, at time.Time) any
}

var (
	userStoreLinks = linkTable{
		table:       "user_lojas",
		ownerCol:    "user_id",
		targetCol:   "loja_id",
		targetTable: storesTable,
		softDeleted: true,
		notFound:    "Loja %s não encontrada",
		field:       "lojas",
		newRow: func(owner, target uuid.UUID, at time.Time) any {
			return &models.UserStoreModel{UserID: owner, LojaID: target, CreatedAt: at}
		},
	}
	userRoleLinks = linkTable{
		table:       "user_roles",
		ownerCol:    "user_id",
		targetCol:   "role_id",
		targetTable: "roles",
		notFound:    "Perfil %s não encontrado",
		field:       "roles",
		newRow: func(owner, target uuid.UUID, at time.Time) any {
			return &models.UserRoleModel{UserID: owner, RoleID: target, CreatedAt: at}
		},
	}
	rolePermissionLinks = linkTable{
		table:       "role_permissions",
		ownerCol:    "role_id",
		targetCol:   "permission_id",
		targetTable: "permissions",
		notFound:    "Permissão %s não encontrada",
		field:       "permissions",
		newRow: func(owner, target uuid.UUID, at time.Time) any {
			return &models.RolePermissionModel{RoleID: owner, PermissionID: target, CreatedAt: at}
		},
	}
)

// syncLinks makes the owner's rows in the join table equal desired.
// Unknown targets fail before any write, naming the first one in submitted
// order. Rows present in both sets are not touched.
func syncLinks(ctx context.Context, db *gorm.DB, lt linkTable, ownerID uuid.UUID, desired []uuid.UUID) (identity.SyncResult, error) {
	desired = shared.Dedup(desired)
	if err := verifyTargets(ctx, db, lt, desired); err != nil {
		return identity.SyncResult{}, err
	}

	current, err := currentLinks(ctx, db, lt, ownerID)
	if err != nil {
		return identity.SyncResult{}, err
	}

	add, remove := shared.Diff(current, desired)
	if len(remove) > 0 {
		err := db.WithContext(ctx).
			Exec("DELETE FROM "+lt.table+" WHERE "+lt.ownerCol+" = ? AND "+lt.targetCol+" IN ?", ownerID, remove).
			Error
		if err != nil {
			return identity.SyncResult{}, fmt.Errorf("remove %s links: %w", lt.table, err)
		}
	}
	if len(add) > 0 {
		now := time.Now()
		for _, id := range add {
			if err := db.WithContext(ctx).Create(lt.newRow(ownerID, id, now)).Error; err != nil {
				return identity.SyncResult{}, fmt.Errorf("add %s links: %w", lt.table, err)
			}
		}
	}
	return identity.SyncResult{Added: add, Removed: remove}, nil
}

func currentLinks(ctx context.Context, db *gorm.DB, lt linkTable, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).
		Table(lt.table).
		Where(lt.ownerCol+" = ?", ownerID).
		Pluck(lt.targetCol, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load %s links: %w", lt.table, err)
	}
	return ids, nil
}

func verifyTargets(ctx context.Context, db *gorm.DB, lt linkTable, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := db.WithContext(ctx).Table(lt.targetTable).Where("id IN ?", ids)
	if lt.softDeleted {
		query = query.Scopes(NotDeleted(lt.targetTable))
	}
	var found []uuid.UUID
	if err := query.Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("verify %s: %w", lt.targetTable, err)
	}
	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf(lt.notFound, id)).
				WithDetails(map[string]any{"field": lt.field, "id": id.String()})
		}
	}
	return nil
}
