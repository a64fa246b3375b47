package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/handlers"
	"github.com/classdesk/classdesk-backend/internal/middleware"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type RouterConfig struct {
	AuthMiddleware  *middleware.AuthMiddleware
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	CourseHandler   *handlers.CourseHandler
	TopicHandler    *handlers.TopicHandler
	MaterialHandler *handlers.MaterialHandler
	GradeHandler    *handlers.GradeHandler
	CommentHandler  *handlers.CommentHandler
}

// NewRouter mounts every protected route behind the enforcement chain:
// RequireAuth resolves the principal, Resolve* locates the resource,
// Require evaluates policy. Handlers only run after an ALLOW.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	am := cfg.AuthMiddleware

	router.GET("/healthcheck", handlers.Healthcheck)

	api := router.Group("/api/v1")

	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)
	api.POST("/refresh", cfg.AuthHandler.Refresh)
	api.POST("/logout", cfg.AuthHandler.Logout)

	protected := api.Group("/")
	protected.Use(am.RequireAuth())

	// Profile
	protected.GET("/me", cfg.UserHandler.GetProfile)
	protected.GET("/users/:user_id/profile",
		am.SubjectUserParam("user_id"),
		am.Require(authz.ActionProfileViewSelf),
		cfg.UserHandler.GetProfileByID)
	protected.POST("/users/:user_id/promote",
		am.Require(authz.ActionPromoteAdmin),
		cfg.UserHandler.PromoteToAdmin)

	// Courses
	protected.GET("/courses", cfg.CourseHandler.List)
	protected.POST("/courses",
		am.Require(authz.ActionCourseCreate),
		cfg.CourseHandler.Create)

	course := protected.Group("/courses/:course")
	course.Use(am.ResolveCourse())
	{
		course.GET("",
			am.Require(authz.ActionCourseView),
			cfg.CourseHandler.Get)
		course.PUT("",
			am.Require(authz.ActionCourseUpdate),
			cfg.CourseHandler.Update)
		course.DELETE("",
			am.Require(authz.ActionCourseDelete),
			cfg.CourseHandler.Delete)

		// Roster
		course.POST("/instructors/:user_id",
			am.TargetUserParam("user_id"),
			am.Require(authz.ActionRosterAddInstructor),
			cfg.CourseHandler.AddInstructor)
		course.DELETE("/instructors/:user_id",
			am.TargetUserParam("user_id"),
			am.Require(authz.ActionRosterRemoveInstructor),
			cfg.CourseHandler.RemoveInstructor)
		course.POST("/students/:user_id",
			am.TargetUserParam("user_id"),
			am.Require(authz.ActionRosterAddStudent),
			cfg.CourseHandler.AddStudent)
		course.DELETE("/students/:user_id",
			am.TargetUserParam("user_id"),
			am.Require(authz.ActionRosterRemoveStudent),
			cfg.CourseHandler.RemoveStudent)
		course.PUT("/students",
			am.Require(authz.ActionRosterReplaceStudents),
			cfg.CourseHandler.ReplaceStudents)

		// Topics
		course.GET("/topics",
			am.Require(authz.ActionCourseView),
			cfg.TopicHandler.List)
		course.GET("/topics/:topic_id/materials",
			am.Require(authz.ActionMaterialView),
			cfg.MaterialHandler.ListByTopic)
		course.POST("/topics",
			am.Require(authz.ActionTopicCreate),
			cfg.TopicHandler.Create)
		course.PUT("/topics/reorder",
			am.Require(authz.ActionTopicReorder),
			cfg.TopicHandler.Reorder)
		course.PUT("/topics/:topic_id",
			am.Require(authz.ActionTopicUpdate),
			cfg.TopicHandler.Update)
		course.DELETE("/topics/:topic_id",
			am.Require(authz.ActionTopicDelete),
			cfg.TopicHandler.Delete)

		// Materials
		course.POST("/topics/:topic_id/materials",
			am.Require(authz.ActionMaterialCreate),
			cfg.MaterialHandler.Create)
		course.GET("/materials/:material_id",
			am.Require(authz.ActionMaterialView),
			cfg.MaterialHandler.Get)
		course.PUT("/materials/:material_id",
			am.Require(authz.ActionMaterialUpdate),
			cfg.MaterialHandler.Update)
		course.DELETE("/materials/:material_id",
			am.Require(authz.ActionMaterialDelete),
			cfg.MaterialHandler.Delete)
		course.GET("/materials/:material_id/download",
			am.Require(authz.ActionMaterialDownload),
			cfg.MaterialHandler.Download)

		// Comments
		course.GET("/materials/:material_id/comments",
			am.Require(authz.ActionCommentView),
			cfg.CommentHandler.ListByMaterial)
		course.POST("/materials/:material_id/comments",
			am.Require(authz.ActionCommentCreate),
			cfg.CommentHandler.Create)

		// Grades
		course.POST("/grades",
			am.Require(authz.ActionGradeCreate),
			cfg.GradeHandler.Create)
		course.GET("/grades",
			am.Require(authz.ActionGradeView),
			cfg.GradeHandler.ListByCourse)
		course.GET("/grades/me",
			am.Require(authz.ActionGradeViewMine),
			cfg.GradeHandler.GetOwn)
	}

	// Grade records addressed directly; the locator dereferences the
	// owning course.
	grade := protected.Group("/grades/:grade_record_id")
	grade.Use(am.ResolveGradeRecord())
	{
		grade.GET("",
			am.Require(authz.ActionGradeView),
			cfg.GradeHandler.Get)
		grade.GET("/own",
			am.Require(authz.ActionGradeViewOwn),
			cfg.GradeHandler.Get)
		grade.PUT("/assessments",
			am.Require(authz.ActionGradeReplace),
			cfg.GradeHandler.ReplaceAssessments)
		grade.DELETE("",
			am.Require(authz.ActionGradeDelete),
			cfg.GradeHandler.Delete)
	}

	// Comments addressed directly for edit/delete/reply.
	comment := protected.Group("/comments/:comment_id")
	comment.Use(am.ResolveComment())
	{
		comment.PUT("",
			am.Require(authz.ActionCommentEdit),
			cfg.CommentHandler.Edit)
		comment.DELETE("",
			am.Require(authz.ActionCommentDelete),
			cfg.CommentHandler.Delete)
		comment.POST("/replies",
			am.Require(authz.ActionCommentCreate),
			cfg.CommentHandler.Reply)
		comment.PUT("/replies/:reply_id",
			am.ResolveReply(),
			am.Require(authz.ActionReplyEdit),
			cfg.CommentHandler.EditReply)
		comment.DELETE("/replies/:reply_id",
			am.ResolveReply(),
			am.Require(authz.ActionReplyDelete),
			cfg.CommentHandler.DeleteReply)
	}

	// Admin-shaped edit routes that may carry any identifier param.
	adminCourse := protected.Group("/admin/courses/:course_id")
	adminCourse.Use(am.RequireAuth(types.RoleAdmin), am.ResolveCourse())
	{
		adminCourse.PUT("",
			am.Require(authz.ActionCourseUpdate),
			cfg.CourseHandler.Update)
		adminCourse.DELETE("",
			am.Require(authz.ActionCourseDelete),
			cfg.CourseHandler.Delete)
	}

	return router
}
