package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gymflow/internal/models"
	"gymflow/internal/services"
	"gymflow/internal/tasks"
)

func main() {
	// defined flags
	taskName := flag.String("task_name", "", "Name of the task")
	argsStr := flag.String("arguments", "{}", "JSON arguments for the task")
	dueStr := flag.String("due", "", "Due date (format: 2006-01-02 15:04 or RFC3339)")
	taskType := flag.String("tasktype", "onetime", "Task type (optional, default: onetime)")
	recurring := flag.String("recurring", "", "Recurring interval rule (optional)")
	maxAttempt := flag.Int("max_attempt", 3, "Max attempts (optional, default: 3)")
	installReconcile := flag.Bool("install_reconcile", false, "Install the daily membership-status reconciliation task")

	flag.Parse()

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	db, err := services.InitDB()
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}

	if *installReconcile {
		// Idempotent: skip when an active reconcile task already exists.
		var count int64
		err := db.Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ?", models.TaskReconcileStatuses, models.ScheduledTaskStatusActive).
			Count(&count).Error
		if err != nil {
			log.Fatalf("Failed to check existing tasks: %v", err)
		}
		if count > 0 {
			fmt.Println("Reconciliation task already installed")
			return
		}

		task, err := tasks.ReconcileMembershipStatusTask.CreateRecurringTask()
		if err != nil {
			log.Fatalf("Failed to build task: %v", err)
		}
		if err := db.Create(task).Error; err != nil {
			log.Fatalf("Failed to create task: %v", err)
		}
		fmt.Printf("Installed daily reconciliation task ID: %d\n", task.ID)
		return
	}

	// Validation
	if *taskName == "" || *dueStr == "" {
		fmt.Println("Usage: schedule_task -task_name <name> -due <YYYY-MM-DD HH:MM> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Parse arguments JSON
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(*argsStr), &args); err != nil {
		log.Fatalf("Invalid JSON arguments: %v", err)
	}

	// Parse due date
	due, err := time.Parse(time.RFC3339, *dueStr)
	if err != nil {
		due, err = time.ParseInLocation("2006-01-02 15:04", *dueStr, time.Local)
		if err != nil {
			log.Fatalf("Invalid due date format. Use '2006-01-02 15:04' (Local) or RFC3339: %v", err)
		}
	}

	// Recurring ptr
	var recurringPtr *string
	if *recurring != "" {
		recurringPtr = recurring
	}

	task := models.ScheduledTask{
		TaskName:          *taskName,
		Arguments:         args,
		Due:               due,
		TaskType:          models.ScheduledTaskType(*taskType),
		RecurringInterval: recurringPtr,
		MaxAttempt:        *maxAttempt,
		Status:            models.ScheduledTaskStatusActive,
	}

	if err := db.Create(&task).Error; err != nil {
		log.Fatalf("Failed to create task: %v", err)
	}

	fmt.Printf("Successfully created task ID: %d\n", task.ID)
	fmt.Printf("Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due, task.TaskType)
}
