package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	//同じテーブルに open の内用注文がすでにある（一意インデックス違反）
	ErrTableOccupied = errors.New("table occupied")
)
