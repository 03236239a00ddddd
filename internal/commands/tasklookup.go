package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/controller"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// pageFlags are the --filter and --page flags shared by commands that list
// or address tasks by number.
type pageFlags struct {
	filter string
	page   int
}

func (p *pageFlags) register(fs *flag.FlagSet, defaultPage int) {
	fs.StringVar(&p.filter, "filter", "all", "")
	fs.StringVar(&p.filter, "f", "all", "")
	fs.IntVar(&p.page, "page", defaultPage, "")
}

// locate loads the page that holds task number num and returns the task.
// Without --page the page is derived from num. Errors are printed to errOut;
// the returned code is exitcode.Success when the task was found.
func (p *pageFlags) locate(ctx context.Context, ctl *controller.Controller, num int, errOut io.Writer) (service.Task, int) {
	filter, err := service.ParseFilter(p.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	page := p.page
	if page == 0 {
		page = (num-1)/service.PageSize + 1
	}
	if page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", page)
		return service.Task{}, exitcode.UserError
	}

	if err := ctl.Browse(ctx, filter, page); err != nil {
		if isNotFound(err) {
			fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
			return service.Task{}, exitcode.UserError
		}
		return service.Task{}, fail(errOut, err)
	}

	tasks := ctl.State().Tasks
	i := num - (page-1)*service.PageSize - 1
	if i < 0 || i >= len(tasks) {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return service.Task{}, exitcode.UserError
	}
	return tasks[i], exitcode.Success
}
