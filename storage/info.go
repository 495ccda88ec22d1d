package storage

import (
	"github.com/eduapps/quizvault/models"
	"github.com/eduapps/quizvault/utils"
)

// StorageInfo reports record counts per collection and overall database
// usage (pages × page size).
func (db *DB) StorageInfo() (*models.StorageInfo, error) {
	info := &models.StorageInfo{Collections: make(map[string]int)}

	for name := range collections {
		n, err := db.Count(name)
		if err != nil {
			return nil, err
		}
		info.Collections[name] = n
		info.TotalRecords += n
	}

	if err := db.QueryRow("PRAGMA page_count").Scan(&info.PageCount); err != nil {
		utils.LogError("Failed to read page count: %v", err)
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&info.PageSize); err != nil {
		utils.LogError("Failed to read page size: %v", err)
	}
	info.UsedBytes = info.PageCount * info.PageSize

	return info, nil
}
