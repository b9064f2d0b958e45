// Package model はドメインモデルを定義する。
package model

import "time"

// Board はユーザーが作成するポッドキャスト整理用ボードを表す。
// 各ボードは表示順付きのBoardTypeタグ列を持つ。
type Board struct {
	ID        string
	OwnerID   string
	Name      string
	Types     []BoardType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BoardType はボードに属するタグを表す。
// ボードから独立して存在することはなく、ボード削除時にCASCADE削除される。
type BoardType struct {
	BoardID      string
	Name         string
	Color        string // 表示用カラートークン（中身は解釈しない）
	DisplayOrder int
}

// BoardTypeInput はボード作成・更新時に受け取るタグの入力形。
// DisplayOrderは入力列の位置から採番するため含まない。
type BoardTypeInput struct {
	Name  string
	Color string
}
