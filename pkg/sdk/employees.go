package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// Employees lists the staff of the caller's tenant.
func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var reply struct {
		Employees []Employee `json:"employees"`
	}
	if err := c.Do(ctx, "/employees", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Employees, nil
}

// SalaryHistory returns the payout history for one employee.
func (c *Client) SalaryHistory(ctx context.Context, employeeID string) ([]Payout, error) {
	var reply struct {
		Payouts []Payout `json:"payouts"`
	}
	path := fmt.Sprintf("/employees/%s/salary-history", employeeID)
	if err := c.Do(ctx, path, RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Payouts, nil
}

// Attendance returns the attendance log for one employee.
func (c *Client) Attendance(ctx context.Context, employeeID string) ([]AttendanceEntry, error) {
	var reply struct {
		Attendance []AttendanceEntry `json:"attendance"`
	}
	path := fmt.Sprintf("/employees/%s/attendance", employeeID)
	if err := c.Do(ctx, path, RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Attendance, nil
}

// LogAttendance records today's attendance for one employee.
func (c *Client) LogAttendance(ctx context.Context, employeeID string, entry AttendanceEntry) error {
	path := fmt.Sprintf("/employees/%s/attendance", employeeID)
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPost, Body: entry}, nil)
}

// LeaveRequests returns an employee's leave requests.
func (c *Client) LeaveRequests(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var reply struct {
		Leaves []LeaveRequest `json:"leaves"`
	}
	path := fmt.Sprintf("/employees/%s/leave-requests", employeeID)
	if err := c.Do(ctx, path, RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Leaves, nil
}

// SubmitLeaveRequest files a new leave request for an employee.
func (c *Client) SubmitLeaveRequest(ctx context.Context, employeeID string, req LeaveRequest) error {
	path := fmt.Sprintf("/employees/%s/leave-requests", employeeID)
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPost, Body: req}, nil)
}

// TeamLeaveRequests lists pending leave requests across the caller's team,
// for manager review.
func (c *Client) TeamLeaveRequests(ctx context.Context) ([]LeaveRequest, error) {
	var reply struct {
		Leaves []LeaveRequest `json:"leaves"`
	}
	if err := c.Do(ctx, "/team/leave-requests", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Leaves, nil
}

// Documents lists an employee's stored documents.
func (c *Client) Documents(ctx context.Context, employeeID string) ([]Document, error) {
	var reply struct {
		Docs []Document `json:"docs"`
	}
	path := fmt.Sprintf("/employees/%s/documents", employeeID)
	if err := c.Do(ctx, path, RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Docs, nil
}
