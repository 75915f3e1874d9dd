package user

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListHandler は GET /users のハンドラーを返します。
// 認可（ログイン必須）は上位のミドルウェアが担います。
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("user list failed: %v", err)
			c.HTML(http.StatusOK, "users.html", gin.H{
				"pageTitle":    "Список користувачів",
				"errorMessage": "Помилка завантаження даних.",
				"users":        []ListItem{},
				"hasUsers":     false,
			})
			return
		}

		items := make([]ListItem, 0, len(users))
		for _, u := range users {
			items = append(items, NewListItem(u))
		}

		c.HTML(http.StatusOK, "users.html", gin.H{
			"pageTitle":    "Список користувачів",
			"errorMessage": nil,
			"users":        items,
			"hasUsers":     len(items) > 0,
		})
	}
}
