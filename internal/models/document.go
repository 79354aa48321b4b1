package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stamp sets CreatedAt on first save and UpdatedAt on every save.
func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (u *User) GetID() primitive.ObjectID   { return u.ID }
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }
func (u *User) Touch(now time.Time)         { stamp(&u.CreatedAt, &u.UpdatedAt, now) }

func (v *Vehicle) GetID() primitive.ObjectID   { return v.ID }
func (v *Vehicle) SetID(id primitive.ObjectID) { v.ID = id }
func (v *Vehicle) Touch(now time.Time)         { stamp(&v.CreatedAt, &v.UpdatedAt, now) }

func (m *Maintenance) GetID() primitive.ObjectID   { return m.ID }
func (m *Maintenance) SetID(id primitive.ObjectID) { m.ID = id }
func (m *Maintenance) Touch(now time.Time)         { stamp(&m.CreatedAt, &m.UpdatedAt, now) }

func (i *Invoice) GetID() primitive.ObjectID   { return i.ID }
func (i *Invoice) SetID(id primitive.ObjectID) { i.ID = id }
func (i *Invoice) Touch(now time.Time)         { stamp(&i.CreatedAt, &i.UpdatedAt, now) }

func (e *Expense) GetID() primitive.ObjectID   { return e.ID }
func (e *Expense) SetID(id primitive.ObjectID) { e.ID = id }
func (e *Expense) Touch(now time.Time)         { stamp(&e.CreatedAt, &e.UpdatedAt, now) }

func (w *Workshop) GetID() primitive.ObjectID   { return w.ID }
func (w *Workshop) SetID(id primitive.ObjectID) { w.ID = id }
func (w *Workshop) Touch(now time.Time)         { stamp(&w.CreatedAt, &w.UpdatedAt, now) }

func (r *Reminder) GetID() primitive.ObjectID   { return r.ID }
func (r *Reminder) SetID(id primitive.ObjectID) { r.ID = id }
func (r *Reminder) Touch(now time.Time)         { stamp(&r.CreatedAt, &r.UpdatedAt, now) }

func (d *DriverProfile) GetID() primitive.ObjectID   { return d.ID }
func (d *DriverProfile) SetID(id primitive.ObjectID) { d.ID = id }
func (d *DriverProfile) Touch(now time.Time)         { stamp(&d.CreatedAt, &d.UpdatedAt, now) }
