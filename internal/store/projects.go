package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Projects reads project membership. Projects are managed by another
// service; Create exists for seeding.
type Projects struct {
	db *gorm.DB
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

func (p *Projects) IsMember(ctx context.Context, pid domain.ProjectID, uid domain.UserID) (bool, error) {
	var members []projectMemberModel
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pm projectModel
		if err := tx.Select("id").First(&pm, "id = ?", string(pid)).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ? AND user_id = ?", string(pid), string(uid)).Limit(1).Find(&members).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrProjectNotFound
		}
		return false, fmt.Errorf("%w: project membership: %v", domain.ErrPersistence, err)
	}
	return len(members) > 0, nil
}

func (p *Projects) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	if project.ID == "" {
		project.ID = domain.ProjectID(uuid.NewString())
	}
	m := projectModel{ID: string(project.ID), Title: project.Title}
	for _, mm := range project.Members {
		m.Members = append(m.Members, projectMemberModel{ProjectID: m.ID, UserID: string(mm.UserID), Role: mm.Role})
	}
	if err := p.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Project{}, fmt.Errorf("%w: create project: %v", domain.ErrPersistence, err)
	}
	return project, nil
}
