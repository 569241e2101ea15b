package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/linah-store-server/internal/config"
	"github.com/mmhmddd/linah-store-server/internal/database"
	"github.com/mmhmddd/linah-store-server/internal/handlers"
	"github.com/mmhmddd/linah-store-server/internal/mailer"
	"github.com/mmhmddd/linah-store-server/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("⚠️ user index warning:", err)
	}
	if err := database.EnsureBookIndexes(db); err != nil {
		log.Println("⚠️ book index warning:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("⚠️ order index warning:", err)
	}

	mail := mailer.New(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
	)

	secret := config.AppEnv.JWTSecret
	tokenTTL := config.AppEnv.TokenTTL

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	store := cookie.NewStore([]byte(config.AppEnv.SessionSecret))
	r.Use(sessions.Sessions("linah_session", store))

	r.Static("/uploads", config.AppEnv.UploadDir)

	r.GET("/", handlers.Home())

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, secret, tokenTTL))
		auth.POST("/login", handlers.Login(db, secret, tokenTTL))
		auth.POST("/forgetpassword", handlers.ForgetPassword(db, mail, config.AppEnv.PublicURL))
		auth.PUT("/resetpassword/:token", handlers.ResetPassword(db))
	}

	books := api.Group("/books")
	{
		books.GET("", handlers.GetAllBooks(db))
		books.GET("/:id", handlers.GetBookByID(db))

		adminBooks := books.Group("")
		adminBooks.Use(middleware.Protect(db, secret), middleware.AdminOnly())
		{
			adminBooks.POST("", handlers.AddBook(db))
			adminBooks.PUT("/:id", handlers.UpdateBook(db))
			adminBooks.DELETE("/:id", handlers.DeleteBook(db))
			adminBooks.PATCH("/:id/offer", handlers.AddOfferToBook(db))
			adminBooks.PATCH("/:id/stock", handlers.SetStockStatus(db))
		}
	}

	cart := api.Group("/cart")
	{
		cart.GET("", handlers.GetCart(db, secret))
		cart.POST("", handlers.AddToCart(db, secret))
		cart.PUT("", handlers.UpdateCartItem(db, secret))
		cart.DELETE("/clear", handlers.ClearCart(db, secret))
		cart.DELETE("/:bookId", handlers.RemoveFromCart(db, secret))
	}

	favorites := api.Group("/favorites")
	{
		favorites.GET("", handlers.GetFavorites(db, secret))
		favorites.POST("", handlers.AddToFavorites(db, secret))
		favorites.DELETE("/clear", handlers.ClearFavorites(db, secret))
		favorites.DELETE("/:bookId", handlers.RemoveFromFavorites(db, secret))
	}

	orders := api.Group("/orders")
	{
		orders.POST("", handlers.CreateOrder(db, secret))
		orders.GET("", handlers.GetAllOrders(db, secret))
		orders.GET("/:id", handlers.GetOrderByID(db, secret))
		orders.PUT("/:id/status", handlers.UpdateOrderStatus(db, secret))
		orders.PUT("/:id", handlers.UpdateOrder(db, secret))
		orders.DELETE("/:id", handlers.DeleteOrder(db, secret))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
