package controllers

import (
	"os"
	"strconv"

	mongo_client "loanbackend/clients/mongo"
	"loanbackend/services"
	"loanbackend/types"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type EvaluationControllerI interface {
	EvaluateLoan(ctx *gin.Context)
	GetBanks(ctx *gin.Context)
	GetRecentEvaluations(ctx *gin.Context)
}

type evaluationController struct{}

var EvaluationController EvaluationControllerI = &evaluationController{}

// EvaluateLoan runs a full affordability evaluation for the posted
// applicant profile and returns the per-bank table plus the ranked
// recommendations.
func (e *evaluationController) EvaluateLoan(ctx *gin.Context) {
	span := sentry.StartSpan(ctx.Request.Context(), "[GIN] EvaluateLoan", sentry.WithTransactionName("EvaluateLoan"))
	defer span.Finish()

	var profile types.ApplicantProfile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		span.Status = sentry.SpanStatusFailedPrecondition
		ctx.JSON(400, gin.H{"error": "Error parsing applicant profile"})
		return
	}

	result, err := services.EvaluationService.EvaluateAffordability(span.Context(), profile)
	if err != nil {
		if types.IsValidationError(err) {
			span.Status = sentry.SpanStatusFailedPrecondition
			ctx.JSON(400, gin.H{"error": err.Error()})
			return
		}
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		zap.L().Error("Evaluation failed", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error evaluating affordability"})
		return
	}

	span.Status = sentry.SpanStatusOK
	ctx.JSON(200, result)
}

// GetBanks returns the loaded bank standards table for transparency.
func (e *evaluationController) GetBanks(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"banks": services.BankStandards()})
}

// GetRecentEvaluations pages over the evaluation history collection.
func (e *evaluationController) GetRecentEvaluations(ctx *gin.Context) {
	if mongo_client.Client == nil {
		ctx.JSON(503, gin.H{"error": "Evaluation history is not configured"})
		return
	}

	pageNumberStr := ctx.DefaultQuery("pageNumber", "1")
	pageNumber, err := strconv.Atoi(pageNumberStr)
	if err != nil || pageNumber < 1 {
		ctx.JSON(400, gin.H{"error": "Invalid page number"})
		return
	}

	collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(os.Getenv("COLLECTION"))
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdAt": -1})
	findOptions.SetLimit(10)
	findOptions.SetSkip(int64(10 * (pageNumber - 1)))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		sentry.CaptureException(err)
		zap.L().Error("Error while fetching evaluations", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching evaluations"})
		return
	}
	defer cursor.Close(ctx)

	evaluations := make([]bson.M, 0, 10)
	for cursor.Next(ctx) {
		var result bson.M
		if err := cursor.Decode(&result); err != nil {
			zap.L().Error("Error while decoding evaluation", zap.Error(err))
			continue
		}
		delete(result, "_id")
		evaluations = append(evaluations, result)
	}

	ctx.JSON(200, gin.H{"evaluations": evaluations, "pageNumber": pageNumber})
}
