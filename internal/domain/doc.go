// Package domain defines the core planning entities: recurring templates
// (habits, chores, metrics, persons), inbox tasks, vacations, projects and
// the sync links tying local entities to their remote mirrors.
package domain
