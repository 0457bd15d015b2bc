package routes

import (
	"musicschool_go/controllers"
	"musicschool_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the full API surface under /api. Role gates follow one
// rule set: deletes, monthly generation and instrument writes are admin
// only; other writes need admin or employee; reads need a valid token.
func SetupRoutes(app *fiber.App) {
	authController := &controllers.AuthController{}
	studentController := &controllers.StudentController{}
	teacherController := &controllers.TeacherController{}
	classController := &controllers.ClassController{}
	paymentController := &controllers.PaymentController{}
	eventController := &controllers.EventController{}
	attendanceController := &controllers.AttendanceController{}
	dashboardController := &controllers.DashboardController{}
	instrumentController := &controllers.InstrumentController{}
	logController := &controllers.LogController{}

	api := app.Group("/api")

	// Authentication routes (no middleware on login)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/me", middleware.JWTMiddleware(), authController.Me)
	auth.Put("/change-password", middleware.JWTMiddleware(), authController.ChangePassword)
	auth.Post("/logout", middleware.JWTMiddleware(), authController.Logout)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Dashboard
	protected.Get("/dashboard", middleware.RequireAdminOrEmployee(), dashboardController.GetDashboard)
	protected.Get("/dashboard/student", dashboardController.GetStudentDashboard)

	// Students
	students := protected.Group("/students")
	students.Get("/", middleware.RequireAdminOrEmployee(), studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", middleware.RequireAdminOrEmployee(), studentController.CreateStudent)
	students.Put("/:id", middleware.RequireAdminOrEmployee(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireAdmin(), studentController.DeleteStudent)

	// Teachers
	teachers := protected.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireAdmin(), teacherController.DeleteTeacher)

	// Classes + enrollment
	classes := protected.Group("/classes")
	classes.Get("/", classController.GetClasses)
	classes.Get("/:id", classController.GetClass)
	classes.Post("/", middleware.RequireAdminOrEmployee(), classController.CreateClass)
	classes.Put("/:id", middleware.RequireAdminOrEmployee(), classController.UpdateClass)
	classes.Delete("/:id", middleware.RequireAdmin(), classController.DeleteClass)
	classes.Post("/:id/enroll", middleware.RequireAdminOrEmployee(), classController.EnrollStudent)
	classes.Delete("/:id/students/:studentId", middleware.RequireAdminOrEmployee(), classController.RemoveStudent)

	// Payments. Static segments before /:id so "overdue" and "generate"
	// are not swallowed by the param route.
	payments := protected.Group("/payments")
	payments.Get("/", middleware.RequireAdminOrEmployee(), paymentController.GetPayments)
	payments.Get("/overdue/list", middleware.RequireAdminOrEmployee(), paymentController.GetOverdue)
	payments.Post("/generate/monthly", middleware.RequireAdmin(), paymentController.GenerateMonthly)
	payments.Get("/:id", paymentController.GetPayment)
	payments.Post("/", middleware.RequireAdminOrEmployee(), paymentController.CreatePayment)
	payments.Put("/:id", middleware.RequireAdminOrEmployee(), paymentController.UpdatePayment)
	payments.Post("/:id/pay", middleware.RequireAdminOrEmployee(), paymentController.MarkAsPaid)
	payments.Get("/:id/receipt", paymentController.GetReceipt)

	// Events + participants
	events := protected.Group("/events")
	events.Get("/", eventController.GetEvents)
	events.Get("/:id", eventController.GetEvent)
	events.Post("/", middleware.RequireAdminOrEmployee(), eventController.CreateEvent)
	events.Put("/:id", middleware.RequireAdminOrEmployee(), eventController.UpdateEvent)
	events.Delete("/:id", middleware.RequireAdmin(), eventController.DeleteEvent)
	events.Post("/:id/participants", middleware.RequireAdminOrEmployee(), eventController.AddParticipant)
	events.Delete("/:id/participants/:studentId", middleware.RequireAdminOrEmployee(), eventController.RemoveParticipant)
	events.Post("/:id/attendance", middleware.RequireAdminOrEmployee(), eventController.MarkAttendance)
	events.Get("/:id/attendances", eventController.GetAttendances)

	// Class attendance
	attendances := protected.Group("/attendances")
	attendances.Get("/class", attendanceController.GetByClass)
	attendances.Get("/student", attendanceController.GetByStudent)
	attendances.Post("/", middleware.RequireAdminOrEmployee(), attendanceController.MarkAttendance)
	attendances.Post("/bulk", middleware.RequireAdminOrEmployee(), attendanceController.BulkMarkAttendance)
	attendances.Get("/stats", attendanceController.GetStats)
	attendances.Get("/report", middleware.RequireAdminOrEmployee(), attendanceController.GetReport)
	attendances.Get("/report/export", middleware.RequireAdminOrEmployee(), attendanceController.ExportReport)

	// Instruments
	instruments := protected.Group("/instruments")
	instruments.Get("/", instrumentController.GetInstruments)
	instruments.Post("/", middleware.RequireAdmin(), instrumentController.CreateInstrument)
	instruments.Put("/:id", middleware.RequireAdmin(), instrumentController.UpdateInstrument)
	instruments.Delete("/:id", middleware.RequireAdmin(), instrumentController.DeactivateInstrument)

	// Activity logs (admin only)
	protected.Get("/logs", middleware.RequireAdmin(), logController.GetLogs)
}
