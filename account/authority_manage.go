package account

import (
	"context"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	LoadPermsFunc      = LoadPerms
	AssignRoleFunc     = AssignRole
	UnassignRoleFunc   = UnassignRole
	QueryUserRolesFunc = QueryUserRoles
)

func LoadPerms(userId types.ID) authority.Permissions {
	var records []UserRole
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Where(&UserRole{UserID: userId}).Find(&records).Error; err != nil {
		return authority.Permissions{}
	}
	perms := make(authority.Permissions, 0, len(records))
	for _, r := range records {
		perms = append(perms, r.Role)
	}
	return perms
}

func AssignRole(c *RoleAssignment, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&User{ID: c.UserID}).First(&User{}).Error; err != nil {
			return err
		}
		var exist []UserRole
		if err := tx.Where(&UserRole{UserID: c.UserID, Role: c.Role}).Find(&exist).Error; err != nil {
			return err
		}
		if len(exist) > 0 {
			return nil
		}
		record := UserRole{ID: idgen.NextID(userIdWorker), UserID: c.UserID, Role: c.Role,
			CreateTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
}

func UnassignRole(c *RoleAssignment, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where("user_id = ? AND role = ?", c.UserID, c.Role).
		Delete(&UserRole{}).Error
}

func QueryUserRoles(userId types.ID, s *session.Session) ([]UserRole, error) {
	if !s.Perms.IsAdmin() && userId != s.Identity.ID {
		return nil, bizerror.ErrForbidden
	}

	records := []UserRole{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&UserRole{UserID: userId}).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
