package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc        = CreateUser
	QueryUsersFunc        = QueryUsers
	UpdateUserFunc        = UpdateUser
	QueryAccountNamesFunc = QueryAccountNames
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Email: c.Email,
		Secret: HashSha256(c.Secret), CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Email: user.Email}, nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func UpdateUser(userId types.ID, c *UserUpdation, s *session.Session) error {
	if !s.Perms.IsAdmin() && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update(&User{Nickname: c.Nickname}).Error
	})
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

func QueryAccountNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// EnsureAdminUser create the bootstrap admin account when the user table is empty.
func EnsureAdminUser(name, secret string) error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	return db.Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		user := User{ID: idgen.NextID(userIdWorker), Name: name, Nickname: name,
			Secret: HashSha256(secret), CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		role := UserRole{ID: idgen.NextID(userIdWorker), UserID: user.ID, Role: authority.RoleAdmin,
			CreateTime: types.CurrentTimestamp()}
		return tx.Create(&role).Error
	})
}
