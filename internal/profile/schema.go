// Package profile хранит таблицу соответствия полей формы профиля (camelCase)
// и колонок таблицы clients (snake_case) и преобразует данные в обе стороны.
//
// Все адаптеры хранилища и сервисы строят списки колонок только по этой
// таблице, чтобы два словаря не расходились.
package profile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/magabrotheeeer/rental-portal/internal/models"
)

// KeyColumn колонка, по которой записи клиентов уникальны.
const KeyColumn = "user_id"

// DateLayout формат дат в форме и в записях.
const DateLayout = "2006-01-02"

// Kind тип значения поля.
type Kind int

const (
	// Text обычная строка, пустая строка хранится как есть.
	Text Kind = iota
	// Date дата YYYY-MM-DD, пустая строка хранится как NULL.
	Date
	// Path путь к документу в хранилище или NULL.
	Path
	// Flag логический признак.
	Flag
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Date:
		return "date"
	case Path:
		return "path"
	case Flag:
		return "flag"
	default:
		return "unknown"
	}
}

// Field одна строка таблицы соответствия.
// ReadOnly поля не меняются сохранением формы: пути пишет только загрузка
// документов, VIP-статус назначает администратор.
type Field struct {
	Form     string
	Column   string
	Kind     Kind
	ReadOnly bool

	get func(*models.ProfileForm) any
	set func(*models.ProfileForm, any)
}

func text(form, column string, ptr func(*models.ProfileForm) *string) Field {
	return Field{
		Form: form, Column: column, Kind: Text,
		get: func(f *models.ProfileForm) any { return *ptr(f) },
		set: func(f *models.ProfileForm, v any) { *ptr(f) = asString(v) },
	}
}

func date(form, column string, ptr func(*models.ProfileForm) *string) Field {
	return Field{
		Form: form, Column: column, Kind: Date,
		get: func(f *models.ProfileForm) any {
			if *ptr(f) == "" {
				return nil
			}
			return *ptr(f)
		},
		set: func(f *models.ProfileForm, v any) { *ptr(f) = asDate(v) },
	}
}

func path(form, column string, ptr func(*models.ProfileForm) **string) Field {
	return Field{
		Form: form, Column: column, Kind: Path, ReadOnly: true,
		get: func(f *models.ProfileForm) any {
			if p := *ptr(f); p != nil && *p != "" {
				return *p
			}
			return nil
		},
		set: func(f *models.ProfileForm, v any) {
			if s := asString(v); s != "" {
				*ptr(f) = &s
				return
			}
			*ptr(f) = nil
		},
	}
}

func flag(form, column string, readOnly bool, ptr func(*models.ProfileForm) *bool) Field {
	return Field{
		Form: form, Column: column, Kind: Flag, ReadOnly: readOnly,
		get: func(f *models.ProfileForm) any { return *ptr(f) },
		set: func(f *models.ProfileForm, v any) {
			b, _ := v.(bool)
			*ptr(f) = b
		},
	}
}

var fields = []Field{
	text("email", "email", func(f *models.ProfileForm) *string { return &f.Email }),
	text("firstName", "first_name", func(f *models.ProfileForm) *string { return &f.FirstName }),
	text("lastName", "last_name", func(f *models.ProfileForm) *string { return &f.LastName }),
	text("phoneNumber", "phone_number", func(f *models.ProfileForm) *string { return &f.PhoneNumber }),
	date("dateOfBirth", "date_of_birth", func(f *models.ProfileForm) *string { return &f.DateOfBirth }),
	text("address", "address", func(f *models.ProfileForm) *string { return &f.Address }),
	text("city", "city", func(f *models.ProfileForm) *string { return &f.City }),
	text("zipCode", "zip_code", func(f *models.ProfileForm) *string { return &f.ZipCode }),
	text("country", "country", func(f *models.ProfileForm) *string { return &f.Country }),
	text("licenseNumber", "license_num", func(f *models.ProfileForm) *string { return &f.LicenseNumber }),
	date("licenseObtainedDate", "license_obtained_date", func(f *models.ProfileForm) *string { return &f.LicenseObtainedDate }),
	date("licenseExpirationDate", "license_expiration_date", func(f *models.ProfileForm) *string { return &f.LicenseExpirationDate }),
	path("licenseFrontPath", "license_front_path", func(f *models.ProfileForm) **string { return &f.LicenseFrontPath }),
	path("licenseBackPath", "license_back_path", func(f *models.ProfileForm) **string { return &f.LicenseBackPath }),
	flag("isPro", "is_pro", false, func(f *models.ProfileForm) *bool { return &f.IsPro }),
	flag("isVip", "is_vip", true, func(f *models.ProfileForm) *bool { return &f.IsVIP }),
}

var (
	byForm   = make(map[string]Field, len(fields))
	byColumn = make(map[string]Field, len(fields))
)

func init() {
	for _, f := range fields {
		byForm[f.Form] = f
		byColumn[f.Column] = f
	}
}

// Fields возвращает копию таблицы соответствия в фиксированном порядке.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Columns возвращает имена всех колонок профиля без ключевой.
func Columns() []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Column)
	}
	return out
}

// Lookup ищет поле по имени колонки.
func Lookup(column string) (Field, bool) {
	f, ok := byColumn[column]
	return f, ok
}

// Column переводит имя поля формы в имя колонки.
func Column(formName string) (string, bool) {
	f, ok := byForm[formName]
	return f.Column, ok
}

// FormName переводит имя колонки в имя поля формы.
func FormName(column string) (string, bool) {
	f, ok := byColumn[column]
	return f.Form, ok
}

// Encode переводит форму в запись со всеми колонками профиля и ключом.
func Encode(form models.ProfileForm) models.Record {
	return encode(form, false)
}

// EncodeEditable переводит форму в запись только с редактируемыми колонками и ключом.
func EncodeEditable(form models.ProfileForm) models.Record {
	return encode(form, true)
}

func encode(form models.ProfileForm, editableOnly bool) models.Record {
	rec := models.Record{KeyColumn: form.UserID}
	for _, f := range fields {
		if editableOnly && f.ReadOnly {
			continue
		}
		rec[f.Column] = f.get(&form)
	}
	return rec
}

// Decode переводит запись в форму. Отсутствующие колонки и NULL дают
// значения по умолчанию, неизвестные колонки игнорируются.
func Decode(rec models.Record) models.ProfileForm {
	var form models.ProfileForm
	form.UserID = asString(rec[KeyColumn])
	for col, v := range rec {
		if f, ok := byColumn[col]; ok {
			f.set(&form, v)
		}
	}
	return form
}

// Set меняет поле формы по его camelCase имени. Значение приходит строкой,
// флаги разбираются через strconv.ParseBool. Поля только для чтения и
// неизвестные имена возвращают ошибку.
func Set(form *models.ProfileForm, name, value string) error {
	const op = "profile.Set"
	f, ok := byForm[name]
	if !ok {
		return fmt.Errorf("%s: unknown field %q", op, name)
	}
	if f.ReadOnly {
		return fmt.Errorf("%s: field %q is read-only", op, name)
	}
	if f.Kind == Flag {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: field %q: %w", op, name, err)
		}
		f.set(form, b)
		return nil
	}
	f.set(form, value)
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// asDate приводит дату к YYYY-MM-DD, отрезая время, если платформа вернула timestamp.
func asDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(DateLayout)
	}
	s := asString(v)
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
