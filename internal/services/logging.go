package services

import (
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/utils"
	"github.com/sirupsen/logrus"
)

func logMutation(res policy.Resource, id uint64, req policy.Requester, action string) {
	utils.Logger.WithFields(logrus.Fields{
		"resource":  res.String(),
		"id":        id,
		"requester": req.String(),
	}).Info(res.String() + " " + action)
}
