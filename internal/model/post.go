package model

import (
	"math"
	"time"
)

// PageSize は投稿一覧の1ページあたりの件数。
const PageSize = 10

// Post は掲示板の投稿を表す。作成後は変更されない。
type Post struct {
	ID          int64
	Title       string
	Content     string
	Category    string
	WriterID    int64
	WrittenTime time.Time
}

// EnrichedPost は投稿に著者のニックネームを付与したもの。
type EnrichedPost struct {
	Post
	AuthorName string
}

// PostPage はカテゴリ別投稿一覧の1ページ分の結果。
// Total はカテゴリ内の全投稿数であり、著者が解決できず除外された投稿も含む。
// そのため Total が len(Items) を上回ることがある。
type PostPage struct {
	Total int64
	Items []EnrichedPost
}

// maxPageOffset はPageOffsetが返す最大値。PageSizeの倍数に揃える。
const maxPageOffset = math.MaxInt - math.MaxInt%PageSize

// PageOffset は1始まりのページ番号をストアのオフセットに変換する。
// 1以下のページはすべてオフセット0になる。上限は設けず、
// 乗算が溢れるページはmaxPageOffsetに飽和させて空のページになるようにする。
func PageOffset(page int) int {
	if page > 1 && page-1 > maxPageOffset/PageSize {
		return maxPageOffset
	}
	offset := (page - 1) * PageSize
	if offset < 0 {
		return 0
	}
	return offset
}
