package composer

import (
	"github.com/St1cky1/haccp-service/internal/entity"
)

// TaskList - загруженный список задач компании.
// Новые задачи добавляются в начало. Синхронизацию обеспечивает владелец.
type TaskList struct {
	tasks []entity.MonitoringTask
}

func NewTaskList(tasks []entity.MonitoringTask) *TaskList {
	l := &TaskList{tasks: make([]entity.MonitoringTask, len(tasks))}
	copy(l.tasks, tasks)
	return l
}

// Reset заменяет содержимое после повторной загрузки; указатель на список не меняется
func (l *TaskList) Reset(tasks []entity.MonitoringTask) {
	l.tasks = make([]entity.MonitoringTask, len(tasks))
	copy(l.tasks, tasks)
}

func (l *TaskList) Len() int {
	return len(l.tasks)
}

func (l *TaskList) All() []entity.MonitoringTask {
	out := make([]entity.MonitoringTask, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Filter - поиск по подстроке имени, типу и флагу inUse
func (l *TaskList) Filter(f entity.TaskFilter) []entity.MonitoringTask {
	out := make([]entity.MonitoringTask, 0, len(l.tasks))
	for _, t := range l.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (l *TaskList) Get(id string) (entity.MonitoringTask, bool) {
	for _, t := range l.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return entity.MonitoringTask{}, false
}

func (l *TaskList) Prepend(task entity.MonitoringTask) {
	l.tasks = append([]entity.MonitoringTask{task}, l.tasks...)
}

// ReplaceByID заменяет задачу на месте; false если id нет в списке
func (l *TaskList) ReplaceByID(task entity.MonitoringTask) bool {
	for i := range l.tasks {
		if l.tasks[i].ID == task.ID {
			l.tasks[i] = task
			return true
		}
	}
	return false
}

func (l *TaskList) RemoveByID(id string) bool {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Patch применяет изменение к задаче в списке
func (l *TaskList) Patch(id string, apply func(*entity.MonitoringTask)) bool {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			apply(&l.tasks[i])
			return true
		}
	}
	return false
}
