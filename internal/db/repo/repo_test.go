package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.PermissionGroup{},
		&models.GroupPermission{},
		&models.UserPermissionGroup{},
		&models.UserDirectPermission{},
		&models.PermissionAuditLog{},
	))

	return db
}

func TestPermissionRepo_FindByCode(t *testing.T) {
	db := newTestDB(t)
	r := NewPermissionRepo(db)

	require.NoError(t, db.Create(&models.Permission{
		Code:     "sales.order.create",
		Module:   "sales",
		Resource: "order",
		Action:   "create",
	}).Error)

	perm, err := r.FindByCode(context.Background(), "sales.order.create")
	require.NoError(t, err)
	assert.Equal(t, "sales", perm.Module)

	_, err = r.FindByCode(context.Background(), "sales.order.delete")
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestGroupRepo_FindMembershipsByUser(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepo(db)

	group := models.PermissionGroup{Name: "Sales", Slug: "sales", IsActive: true}
	require.NoError(t, db.Create(&group).Error)

	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.UserPermissionGroup{
		UserID:   user.ID,
		GroupID:  group.ID,
		JoinedAt: time.Now(),
	}).Error)

	memberships, err := r.FindMembershipsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, "sales", memberships[0].Group.Slug)
	assert.True(t, memberships[0].Group.IsActive)
}

func TestGroupRepo_SoftDeletedGroupPreloadsAsZeroValue(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepo(db)

	group := models.PermissionGroup{Name: "Sales", Slug: "sales", IsActive: true}
	require.NoError(t, db.Create(&group).Error)

	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.UserPermissionGroup{
		UserID:   user.ID,
		GroupID:  group.ID,
		JoinedAt: time.Now(),
	}).Error)

	require.NoError(t, db.Delete(&group).Error)

	// The membership row survives, but the preloaded group is the zero value,
	// which the resolver treats as inactive.
	memberships, err := r.FindMembershipsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Zero(t, memberships[0].Group.ID)
	assert.False(t, memberships[0].Group.IsActive)
}

func TestGroupRepo_FindByID(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepo(db)

	group := models.PermissionGroup{Name: "Sales", Slug: "sales", IsActive: true}
	require.NoError(t, db.Create(&group).Error)

	found, err := r.FindByID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales", found.Slug)

	require.NoError(t, db.Delete(&group).Error)

	_, err = r.FindByID(context.Background(), group.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestGroupPermissionRepo_FindByGroupsAndPermission(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupPermissionRepo(db)

	g1 := models.PermissionGroup{Name: "Sales", Slug: "sales", IsActive: true}
	g2 := models.PermissionGroup{Name: "Support", Slug: "support", IsActive: true}
	require.NoError(t, db.Create(&g1).Error)
	require.NoError(t, db.Create(&g2).Error)

	require.NoError(t, db.Create(&models.GroupPermission{
		GroupID:        g1.ID,
		PermissionCode: "sales.order.create",
		Effect:         models.GrantEffectAllow,
	}).Error)
	require.NoError(t, db.Create(&models.GroupPermission{
		GroupID:        g2.ID,
		PermissionCode: "sales.order.create",
		Effect:         models.GrantEffectDeny,
	}).Error)
	require.NoError(t, db.Create(&models.GroupPermission{
		GroupID:        g1.ID,
		PermissionCode: "sales.order.read",
		Effect:         models.GrantEffectAllow,
	}).Error)

	grants, err := r.FindByGroupsAndPermission(context.Background(), []uint{g1.ID, g2.ID}, "sales.order.create")
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	grants, err = r.FindByGroupsAndPermission(context.Background(), []uint{g2.ID}, "sales.order.read")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestGroupPermissionRepo_EmptyGroupSetSkipsQuery(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupPermissionRepo(db)

	grants, err := r.FindByGroupsAndPermission(context.Background(), nil, "sales.order.create")
	require.NoError(t, err)
	assert.Nil(t, grants)
}

func TestDirectPermissionRepo_FiltersExpired(t *testing.T) {
	db := newTestDB(t)
	r := NewDirectPermissionRepo(db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	require.NoError(t, db.Create(&models.UserDirectPermission{
		UserID:         7,
		PermissionCode: "sales.order.create",
		Effect:         models.GrantEffectAllow,
		ExpiresAt:      &past,
	}).Error)
	require.NoError(t, db.Create(&models.UserDirectPermission{
		UserID:         7,
		PermissionCode: "sales.order.create",
		Effect:         models.GrantEffectDeny,
		ExpiresAt:      &future,
	}).Error)
	require.NoError(t, db.Create(&models.UserDirectPermission{
		UserID:         7,
		PermissionCode: "sales.order.create",
		Effect:         models.GrantEffectAllow,
	}).Error)

	grants, err := r.FindActiveByUserAndPermission(context.Background(), 7, "sales.order.create")
	require.NoError(t, err)
	require.Len(t, grants, 2)

	for _, grant := range grants {
		if grant.ExpiresAt != nil {
			assert.True(t, grant.ExpiresAt.After(time.Now()))
		}
	}
}

func TestAuditRepo_Append(t *testing.T) {
	db := newTestDB(t)
	r := NewAuditRepo(db)

	entry := models.PermissionAuditLog{
		CheckID:        "0b2c9c4e-8d2c-4a71-9f7e-2b3f6a1d5e90",
		UserID:         7,
		PermissionCode: "sales.order.create",
		Decision:       models.AuditDecisionAllowed,
		Reason:         `granted via group "sales"`,
	}

	require.NoError(t, r.Append(context.Background(), &entry))
	assert.NotZero(t, entry.ID)

	var stored models.PermissionAuditLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, entry.CheckID, stored.CheckID)
}
