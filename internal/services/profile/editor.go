package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/rental-portal/internal/models"
	schema "github.com/magabrotheeeer/rental-portal/internal/profile"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

// State состояние формы редактора.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Editor локальное состояние формы профиля одной сессии.
// Сохранение разрешено только после успешной загрузки; неудачное
// сохранение оставляет правки на месте для повторной попытки.
type Editor struct {
	svc  *Synchronizer
	sess *session.Session

	mu    sync.Mutex
	state State
	form  models.ProfileForm
	err   error
}

// Edit создаёт редактор для сессии sess.
func (s *Synchronizer) Edit(sess *session.Session) *Editor {
	return &Editor{svc: s, sess: sess}
}

// Load загружает форму. При ошибке редактор переходит в Failed и блокирует Save.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	e.state = Loading
	e.mu.Unlock()

	form, err := e.svc.Load(ctx, e.sess)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = Failed
		e.err = err
		return err
	}
	e.state = Loaded
	e.form = form
	e.err = nil
	return nil
}

// Set меняет одно поле формы по camelCase имени.
func (e *Editor) Set(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Loaded {
		return ErrNotLoaded
	}
	return schema.Set(&e.form, name, value)
}

// Apply применяет несколько правок. При первой ошибке форма остаётся без изменений.
func (e *Editor) Apply(changes map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Loaded {
		return ErrNotLoaded
	}
	next := e.form
	for name, value := range changes {
		if err := schema.Set(&next, name, value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	e.form = next
	return nil
}

// Save сохраняет текущую форму.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	form := e.form
	e.mu.Unlock()

	return e.svc.Save(ctx, e.sess, form)
}

// Form возвращает копию текущей формы.
func (e *Editor) Form() models.ProfileForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// State возвращает состояние и последнюю ошибку загрузки.
func (e *Editor) State() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.err
}

// Patch загружает профиль, применяет правки по camelCase именам и сохраняет.
// Возвращает сохранённую форму.
func (s *Synchronizer) Patch(ctx context.Context, sess *session.Session, changes map[string]string) (models.ProfileForm, error) {
	ed := s.Edit(sess)
	if err := ed.Load(ctx); err != nil {
		return models.ProfileForm{}, err
	}
	if err := ed.Apply(changes); err != nil {
		return models.ProfileForm{}, err
	}
	if err := ed.Save(ctx); err != nil {
		return models.ProfileForm{}, err
	}
	return ed.Form(), nil
}
