// designs.go

package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Design studio: generate designs through the AI adapter and keep the ones
// the user saves.

func generateDesign(c *gin.Context) {
	var req DesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	imageURL, err := genai.GenerateDesign(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrGenerationFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		logger.Error("design generation failed", "user", c.GetString("userId"), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"generatedImageUrl": imageURL})
}

func listDesigns(c *gin.Context) {
	cur, err := db.Collection("designs").Find(c.Request.Context(),
		bson.M{"userId": c.GetString("userId")},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	designs := []SavedDesign{}
	if err := cur.All(c.Request.Context(), &designs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, designs)
}

func saveDesign(c *gin.Context) {
	var req struct {
		Prompt   string `json:"prompt" binding:"required"`
		ImageURL string `json:"imageUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	design := SavedDesign{
		UserID:    c.GetString("userId"),
		Prompt:    req.Prompt,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now().UTC(),
	}
	res, err := db.Collection("designs").InsertOne(c.Request.Context(), design)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	design.ID = res.InsertedID.(primitive.ObjectID)
	c.JSON(http.StatusOK, design)
}

func deleteDesign(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("designId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	res, err := db.Collection("designs").DeleteOne(c.Request.Context(),
		bson.M{"_id": oid, "userId": c.GetString("userId")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func answerFAQ(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	answer, err := genai.AnswerDesignFAQ(c.Request.Context(), req.Question)
	if err != nil {
		logger.Error("faq answer failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
