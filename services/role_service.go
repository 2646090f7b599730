package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync/atomic"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/permissions"

	"gorm.io/gorm"
)

var (
	ErrRoleNotFound  = errors.New("role not found")
	ErrRoleExists    = errors.New("role already exists")
	ErrInvalidRoleID = errors.New("role id must be 2-32 lowercase letters, digits or dashes")
	ErrSystemRole    = errors.New("system roles cannot be renamed or deleted")
	ErrReadOnlyRole  = errors.New("role permissions are read-only")
	ErrRoleInUse     = errors.New("role is assigned to users")
	ErrRoleLabel     = errors.New("role label is required")
)

var roleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,31}$`)

// RoleService persists role definitions and publishes an immutable
// permissions.Registry snapshot after every change.
type RoleService struct {
	DB      *gorm.DB
	current atomic.Pointer[permissions.Registry]
}

// NewRoleService starts with the built-in grants until Load is called
func NewRoleService(db *gorm.DB) *RoleService {
	s := &RoleService{DB: db}
	s.current.Store(permissions.Default())
	return s
}

// Registry returns the current snapshot. Safe for concurrent use.
func (s *RoleService) Registry() *permissions.Registry {
	return s.current.Load()
}

// Load seeds missing system roles and publishes the stored definitions
func (s *RoleService) Load() error {
	if err := s.seedSystemRoles(); err != nil {
		return err
	}
	return s.reload(s.DB)
}

func (s *RoleService) seedSystemRoles() error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, def := range permissions.Defaults() {
			var count int64
			if err := tx.Model(&models.RoleRecord{}).Where("id = ?", def.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check role %s: %w", def.ID, err)
			}
			if count > 0 {
				// Read-only roles always follow the built-in grants
				if def.ReadOnly {
					if err := replacePermissions(tx, def.ID, def.Permissions); err != nil {
						return err
					}
				}
				continue
			}
			rec := roleRecordFrom(def)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", def.ID, err)
			}
			log.Printf("Seeded system role %s", def.ID)
		}
		return nil
	})
}

func (s *RoleService) reload(db *gorm.DB) error {
	var records []models.RoleRecord
	if err := db.Preload("Permissions").Order("created_at ASC").Find(&records).Error; err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}
	defs := make([]permissions.RoleDefinition, 0, len(records))
	for _, r := range records {
		defs = append(defs, definitionFrom(r))
	}
	s.current.Store(permissions.NewRegistry(defs))
	return nil
}

// mutate runs fn in a transaction and republishes the registry on success
func (s *RoleService) mutate(fn func(tx *gorm.DB) error) error {
	if err := s.DB.Transaction(fn); err != nil {
		return err
	}
	return s.reload(s.DB)
}

// CreateRole adds a custom role
func (s *RoleService) CreateRole(id, label string, perms map[string]permissions.Capabilities) (permissions.RoleDefinition, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	label = strings.TrimSpace(label)
	if !roleIDPattern.MatchString(id) {
		return permissions.RoleDefinition{}, ErrInvalidRoleID
	}
	if permissions.IsSystemRole(id) {
		return permissions.RoleDefinition{}, ErrRoleExists
	}
	if label == "" {
		return permissions.RoleDefinition{}, ErrRoleLabel
	}

	def := permissions.RoleDefinition{ID: id, Label: label, Permissions: perms}
	err := s.mutate(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RoleRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role: %w", err)
		}
		if count > 0 {
			return ErrRoleExists
		}
		rec := roleRecordFrom(def)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
		return nil
	})
	if err != nil {
		return permissions.RoleDefinition{}, err
	}
	created, _ := s.Registry().Role(id)
	return created, nil
}

// RenameRole changes the label of a custom role
func (s *RoleService) RenameRole(id, label string) error {
	label = strings.TrimSpace(label)
	if permissions.IsSystemRole(id) {
		return ErrSystemRole
	}
	if label == "" {
		return ErrRoleLabel
	}
	return s.mutate(func(tx *gorm.DB) error {
		result := tx.Model(&models.RoleRecord{}).Where("id = ?", id).Update("label", label)
		if result.Error != nil {
			return fmt.Errorf("failed to rename role: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}
		return nil
	})
}

// DeleteRole removes a custom role that no user holds
func (s *RoleService) DeleteRole(id string) error {
	if permissions.IsSystemRole(id) {
		return ErrSystemRole
	}
	return s.mutate(func(tx *gorm.DB) error {
		var rec models.RoleRecord
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("failed to load role: %w", err)
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("role = ?", id).Count(&users).Error; err != nil {
			return fmt.Errorf("failed to count role users: %w", err)
		}
		if users > 0 {
			return ErrRoleInUse
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete role permissions: %w", err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return nil
	})
}

// SetPermissions replaces the page grants of a role. Unknown pages are ignored.
func (s *RoleService) SetPermissions(id string, perms map[string]permissions.Capabilities) error {
	current, ok := s.Registry().Role(id)
	if !ok {
		return ErrRoleNotFound
	}
	if current.ReadOnly {
		return ErrReadOnlyRole
	}
	return s.mutate(func(tx *gorm.DB) error {
		return replacePermissions(tx, id, perms)
	})
}

func replacePermissions(tx *gorm.DB, roleID string, perms map[string]permissions.Capabilities) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermissionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}
	rows := permissionRecords(roleID, perms)
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save role permissions: %w", err)
	}
	return nil
}

func roleRecordFrom(def permissions.RoleDefinition) models.RoleRecord {
	return models.RoleRecord{
		ID:          def.ID,
		Label:       def.Label,
		System:      def.System,
		ReadOnly:    def.ReadOnly,
		Permissions: permissionRecords(def.ID, def.Permissions),
	}
}

func permissionRecords(roleID string, perms map[string]permissions.Capabilities) []models.RolePermissionRecord {
	rows := make([]models.RolePermissionRecord, 0, len(perms))
	// Page order keeps inserts deterministic
	for _, p := range permissions.Pages() {
		caps, ok := perms[p.ID]
		if !ok || caps.IsZero() {
			continue
		}
		rows = append(rows, models.RolePermissionRecord{
			RoleID:     roleID,
			PageID:     p.ID,
			CanView:    caps.View,
			CanCreate:  caps.Create,
			CanEdit:    caps.Edit,
			CanDelete:  caps.Delete,
			CanViewAll: caps.ViewAll,
			CanViewOwn: caps.ViewOwn,
			CanExport:  caps.Export,
		})
	}
	return rows
}

func definitionFrom(r models.RoleRecord) permissions.RoleDefinition {
	perms := make(map[string]permissions.Capabilities, len(r.Permissions))
	for _, p := range r.Permissions {
		perms[p.PageID] = permissions.Capabilities{
			View:    p.CanView,
			Create:  p.CanCreate,
			Edit:    p.CanEdit,
			Delete:  p.CanDelete,
			ViewAll: p.CanViewAll,
			ViewOwn: p.CanViewOwn,
			Export:  p.CanExport,
		}
	}
	return permissions.RoleDefinition{
		ID:          r.ID,
		Label:       r.Label,
		System:      r.System || permissions.IsSystemRole(r.ID),
		ReadOnly:    r.ReadOnly,
		Permissions: perms,
	}
}
