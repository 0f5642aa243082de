package mapper

import (
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/model"
)

type WorkforceMapper struct{}

func NewWorkforceMapper() *WorkforceMapper {
	return &WorkforceMapper{}
}

func (m *WorkforceMapper) EmployeeToEntity(e *model.Employee) *entity.Employee {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Employee{
		Id:             e.Id,
		Code:           e.Code,
		Name:           e.Name,
		Position:       e.Position,
		HourlyRate:     e.HourlyRate,
		AccountID:      e.AccountId,
		LocationID:     e.LocationId,
		SupervisorCode: e.SupervisorCode,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *WorkforceMapper) EmployeeToModel(e *entity.Employee) *model.Employee {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Employee{
		Id:             e.Id,
		Code:           e.Code,
		Name:           e.Name,
		Position:       e.Position,
		HourlyRate:     e.HourlyRate,
		AccountId:      e.AccountID,
		LocationId:     e.LocationID,
		SupervisorCode: e.SupervisorCode,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *WorkforceMapper) EmployeesToEntities(models []*model.Employee) []*entity.Employee {
	entities := make([]*entity.Employee, len(models))
	for i, e := range models {
		entities[i] = m.EmployeeToEntity(e)
	}
	return entities
}

func (m *WorkforceMapper) ShiftToEntity(s *model.Shift) *entity.Shift {
	if s == nil {
		return nil
	}
	return &entity.Shift{
		Id:             s.Id,
		EmployeeCode:   s.EmployeeCode,
		EmployeeName:   s.EmployeeName,
		Position:       s.Position,
		Department:     s.Department,
		AccountID:      s.AccountId,
		LocationID:     s.LocationId,
		Date:           s.Date,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		ScheduledHours: s.ScheduledHours,
		AttendedHours:  s.AttendedHours,
		CreatedAt:      s.CreatedAt,
	}
}

func (m *WorkforceMapper) ShiftToModel(s *entity.Shift) *model.Shift {
	if s == nil {
		return nil
	}
	return &model.Shift{
		Id:             s.Id,
		EmployeeCode:   s.EmployeeCode,
		EmployeeName:   s.EmployeeName,
		Position:       s.Position,
		Department:     s.Department,
		AccountId:      s.AccountID,
		LocationId:     s.LocationID,
		Date:           s.Date,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		ScheduledHours: s.ScheduledHours,
		AttendedHours:  s.AttendedHours,
		CreatedAt:      s.CreatedAt,
	}
}

func (m *WorkforceMapper) ShiftsToEntities(models []*model.Shift) []*entity.Shift {
	entities := make([]*entity.Shift, len(models))
	for i, s := range models {
		entities[i] = m.ShiftToEntity(s)
	}
	return entities
}

func (m *WorkforceMapper) SaleToEntity(s *model.Sale) *entity.Sale {
	if s == nil {
		return nil
	}
	return &entity.Sale{
		Id:           s.Id,
		AccountID:    s.AccountId,
		LocationID:   s.LocationId,
		EmployeeCode: s.EmployeeCode,
		Date:         s.Date,
		Amount:       s.Amount,
		Category:     s.Category,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *WorkforceMapper) SaleToModel(s *entity.Sale) *model.Sale {
	if s == nil {
		return nil
	}
	return &model.Sale{
		Id:           s.Id,
		AccountId:    s.AccountID,
		LocationId:   s.LocationID,
		EmployeeCode: s.EmployeeCode,
		Date:         s.Date,
		Amount:       s.Amount,
		Category:     s.Category,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *WorkforceMapper) SalesToEntities(models []*model.Sale) []*entity.Sale {
	entities := make([]*entity.Sale, len(models))
	for i, s := range models {
		entities[i] = m.SaleToEntity(s)
	}
	return entities
}
