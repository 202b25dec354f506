package catalog

import (
	"context"

	"meal-parser/internal/pkg/common"
)

// Service 食品目錄服務介面
// Search 對名稱、品牌、分類做不分大小寫的子字串搜尋；
// 空字串回傳完整目錄（供模糊比對後備使用）。
// 查詢失敗回傳錯誤，呼叫端應視為空結果並繼續，而非中斷。
type Service interface {
	Search(ctx context.Context, term string) ([]common.CatalogFood, error)
}
