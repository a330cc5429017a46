package postgres

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/jackc/pgx/v5"
)

// 结构体列映射缓存
var structCache sync.Map // reflect.Type -> map[string]int

// columnIndex 返回列名到字段下标的映射，列名取 db tag，缺省为 snake_case
func columnIndex(t reflect.Type) map[string]int {
	if cached, ok := structCache.Load(t); ok {
		return cached.(map[string]int)
	}

	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = toSnakeCase(field.Name)
		}
		index[tag] = i
	}

	actual, _ := structCache.LoadOrStore(t, index)
	return actual.(map[string]int)
}

func scanOne[T any](rows pgx.Rows) (*T, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	var out T
	if err := scanStruct(rows, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanAll[T any](rows pgx.Rows) ([]*T, error) {
	out := make([]*T, 0)
	for rows.Next() {
		var item T
		if err := scanStruct(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// scanStruct 扫描当前行到结构体指针，未映射的列被丢弃
func scanStruct(rows pgx.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct, got %T", dest)
	}
	v = v.Elem()
	index := columnIndex(v.Type())

	fds := rows.FieldDescriptions()
	targets := make([]any, len(fds))
	for i, fd := range fds {
		if fi, ok := index[fd.Name]; ok {
			targets[i] = v.Field(fi).Addr().Interface()
			continue
		}
		var discard any
		targets[i] = &discard
	}
	return rows.Scan(targets...)
}

// scanIntoSlice 扫描所有行到 *[]*T
func scanIntoSlice(rows pgx.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice, got %T", dest)
	}
	slice := v.Elem()
	elemType := slice.Type().Elem()
	if elemType.Kind() != reflect.Ptr || elemType.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("slice element must be pointer to struct, got %s", elemType)
	}

	for rows.Next() {
		item := reflect.New(elemType.Elem())
		if err := scanStruct(rows, item.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, item))
	}
	return rows.Err()
}

// toSnakeCase PetID -> pet_id, LastSkinChangeAt -> last_skin_change_at
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
